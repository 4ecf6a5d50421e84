package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/scenechat/internal/chat"
	"github.com/danielpatrickdp/scenechat/internal/corpus"
	"github.com/danielpatrickdp/scenechat/internal/metrics"
	"github.com/danielpatrickdp/scenechat/internal/rpc"
	"github.com/danielpatrickdp/scenechat/internal/server"
	"github.com/danielpatrickdp/scenechat/internal/session"
	"github.com/danielpatrickdp/scenechat/internal/tracing"
	"github.com/danielpatrickdp/scenechat/internal/transcript"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve pages over websocket and gRPC",
	Long: `Starts the HTTP server (websocket pages, /metrics, debug routes) and the
gRPC server. With dataset.watch set, edits to the dataset are picked up by
pages opened afterwards.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	m := metrics.New()
	lib := loadLibrary(ctx, corpus.WithReloadHook(m.ObserveCorpus))
	m.ObserveCorpus(lib.Current())

	recorders := []session.Recorder{m}
	if cfg.Transcript.Path != "" {
		store, err := transcript.Open(cfg.Transcript.Path)
		if err != nil {
			return fmt.Errorf("transcript: %w", err)
		}
		defer store.Close()
		recorders = append(recorders, transcript.NewRecorder(store, logger))
	}

	factory := chat.NewFactory(cfg.Session.ToSession(), lib, logger, recorders...)
	httpSrv := server.New(factory, lib, m, logger, server.Options{
		PageTTL:   cfg.Server.PageTTL,
		StaticDir: cfg.Server.StaticDir,
	})
	grpcSrv := grpc.NewServer()
	rpc.Register(grpcSrv, rpc.NewService(factory, logger))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpSrv.Listen(cfg.Server.HTTPAddr)
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		logger.Info("grpc listening", zap.String("addr", cfg.Server.GRPCAddr))
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})
	if cfg.Dataset.Watch {
		g.Go(func() error {
			return lib.Watch(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
