// Package tracing installs the OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/scenechat/internal/config"
)

// ServiceName is reported as service.name on every span.
const ServiceName = "scenechat"

// Shutdown flushes and stops the tracer provider.
type Shutdown func(context.Context) error

// Init exports spans over OTLP/HTTP when cfg.Enabled is set. Otherwise the
// global no-op provider stays in place and the returned Shutdown does
// nothing.
func Init(ctx context.Context, cfg config.TracingConfig, log *zap.Logger) (Shutdown, error) {
	if !cfg.Enabled {
		log.Debug("tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(ServiceName),
		)),
	)
	otel.SetTracerProvider(tp)
	log.Info("tracing enabled", zap.String("endpoint", cfg.Endpoint))
	return tp.Shutdown, nil
}
