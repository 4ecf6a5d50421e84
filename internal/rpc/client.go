package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/danielpatrickdp/scenechat/internal/matcher"
	"github.com/danielpatrickdp/scenechat/internal/surface"
)

// #region client
// Client talks to a scenechat gRPC server.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to addr without transport security.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close shuts down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Match resolves prompt on the server.
func (c *Client) Match(ctx context.Context, prompt string) (matcher.View, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, matchMethod, wrapperspb.String(prompt), out); err != nil {
		return matcher.View{}, fmt.Errorf("match rpc: %w", err)
	}
	return viewFromStruct(out)
}

// Converse opens a page on the server.
func (c *Client) Converse(ctx context.Context) (*Conversation, error) {
	stream, err := c.conn.NewStream(ctx, &ServiceDesc.Streams[0], converseMethod)
	if err != nil {
		return nil, fmt.Errorf("converse rpc: %w", err)
	}
	return &Conversation{stream: stream}, nil
}

// #endregion client

// #region conversation
// Conversation is the client end of a Converse stream.
type Conversation struct {
	stream grpc.ClientStream
}

// Send issues a command.
func (c *Conversation) Send(cmd surface.Command) error {
	st, err := commandToStruct(cmd)
	if err != nil {
		return err
	}
	return c.stream.SendMsg(st)
}

// Recv blocks for the next event. It returns io.EOF once the server ends
// the stream.
func (c *Conversation) Recv() (surface.Event, error) {
	st := new(structpb.Struct)
	if err := c.stream.RecvMsg(st); err != nil {
		return surface.Event{}, err
	}
	return eventFromStruct(st), nil
}

// CloseSend tells the server no more commands are coming.
func (c *Conversation) CloseSend() error {
	return c.stream.CloseSend()
}

// #endregion conversation
