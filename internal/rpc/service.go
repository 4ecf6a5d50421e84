package rpc

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/danielpatrickdp/scenechat/internal/chat"
	"github.com/danielpatrickdp/scenechat/internal/matcher"
	"github.com/danielpatrickdp/scenechat/internal/surface"
)

// #region service
// Service implements SceneChatServer over a conversation factory.
type Service struct {
	factory *chat.Factory
	log     *zap.Logger
}

var _ SceneChatServer = (*Service)(nil)

// NewService creates a Service.
func NewService(factory *chat.Factory, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{factory: factory, log: log.Named("rpc")}
}

// Match resolves in.Value against the live corpus.
func (s *Service) Match(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	out, err := s.factory.Match(ctx, in.GetValue())
	if errors.Is(err, matcher.ErrCorpusUnavailable) {
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return viewToStruct(out.View())
}

// #endregion service

// #region converse
// Converse opens a page for the lifetime of the stream. After the client
// half-closes, events keep flowing until the page is idle.
func (s *Service) Converse(stream ConverseStream) error {
	conv := s.factory.Open()
	defer conv.Close()
	log := s.log.With(zap.String("page", conv.ID))
	log.Debug("stream opened")

	recvDone := make(chan error, 1)
	go func() {
		for {
			msg, err := stream.Recv()
			if err != nil {
				recvDone <- err
				return
			}
			cmd, err := commandFromStruct(msg)
			if err == nil {
				err = conv.Dispatch(cmd)
			}
			if err != nil {
				log.Debug("command rejected", zap.Error(err))
			}
		}
	}()

	events := conv.Events()
	halfClosed := false
	busy := false
	for {
		if halfClosed && !busy && len(events) == 0 {
			return nil
		}
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Type == surface.EventBusy {
				busy = ev.On
			}
			st, err := eventToStruct(ev)
			if err != nil {
				return status.Error(codes.Internal, err.Error())
			}
			if err := stream.Send(st); err != nil {
				return err
			}
		case err := <-recvDone:
			if !errors.Is(err, io.EOF) {
				return err
			}
			halfClosed = true
		case <-stream.Context().Done():
			return stream.Context().Err()
		}
	}
}

// #endregion converse
