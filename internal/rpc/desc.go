// Package rpc exposes conversations over gRPC. Messages are protobuf
// well-known types (StringValue, Struct), so the service needs no generated
// code.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName    = "scenechat.v1.SceneChat"
	matchMethod    = "/" + ServiceName + "/Match"
	converseMethod = "/" + ServiceName + "/Converse"
)

// #region server-api
// SceneChatServer is the server side of scenechat.v1.SceneChat.
type SceneChatServer interface {
	// Match resolves one prompt and returns the outcome view.
	Match(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	// Converse carries commands in and surface events out for one page.
	Converse(stream ConverseStream) error
}

// ConverseStream is the server end of a Converse call.
type ConverseStream interface {
	Send(*structpb.Struct) error
	Recv() (*structpb.Struct, error)
	grpc.ServerStream
}

// Register attaches srv to a gRPC server.
func Register(s grpc.ServiceRegistrar, srv SceneChatServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// #endregion server-api

// #region service-desc
// ServiceDesc describes scenechat.v1.SceneChat:
//
//	rpc Match(google.protobuf.StringValue) returns (google.protobuf.Struct);
//	rpc Converse(stream google.protobuf.Struct) returns (stream google.protobuf.Struct);
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SceneChatServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Match", Handler: matchHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Converse", Handler: converseHandler, ServerStreams: true, ClientStreams: true},
	},
	Metadata: "scenechat/v1/scenechat.proto",
}

func matchHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SceneChatServer).Match(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: matchMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SceneChatServer).Match(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func converseHandler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(SceneChatServer).Converse(&converseServer{stream})
}

type converseServer struct {
	grpc.ServerStream
}

func (x *converseServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

func (x *converseServer) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// #endregion service-desc
