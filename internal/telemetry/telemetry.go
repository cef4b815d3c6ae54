// Package telemetry sets up OpenTelemetry tracing for the generators.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/multierr"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Init installs a global tracer provider that writes spans to a rotated
// file. When tracing is disabled the global no-op provider stays in place
// and the returned shutdown does nothing.
func Init(ctx context.Context, cfg config.TelemetryConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if dir := filepath.Dir(cfg.TracesFile); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create traces directory: %w", err)
		}
	}
	traceFile := &lumberjack.Logger{
		Filename:   cfg.TracesFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(traceFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		return multierr.Append(tp.Shutdown(ctx), traceFile.Close())
	}, nil
}
