package telemetry

import (
	"context"
	"fmt"
	"io"

	"github.com/futig/interview-mentor/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
)

// InitTracer installs the global tracer provider for one console session.
// Spans are written to w as JSON, sampled by cfg.SampleRatio unless the parent
// span decided otherwise. The returned function flushes pending spans and
// shuts the provider down.
func InitTracer(cfg config.TracingConfig, serviceName string, w io.Writer, logger *zap.Logger) (func(context.Context) error, error) {
	exporterOpts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if cfg.Pretty {
		exporterOpts = append(exporterOpts, stdouttrace.WithPrettyPrint())
	}

	exporter, err := stdouttrace.New(exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("create span exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)

	logger.Info("Tracing enabled",
		zap.String("service", serviceName),
		zap.Float64("sample_ratio", cfg.SampleRatio),
	)

	return func(ctx context.Context) error {
		if err := tp.ForceFlush(ctx); err != nil {
			logger.Warn("flush spans", zap.Error(err))
		}
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown tracer provider: %w", err)
		}
		return nil
	}, nil
}
