package infrastructure

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"tidycli/internal/config"
)

// TracerName is the instrumentation scope of spans emitted by a run
const TracerName = "tidycli"

// Tracing holds the tracer for a run and the hook that flushes it
type Tracing struct {
	Tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	closer   io.Closer
}

// Shutdown flushes pending spans and releases the trace file
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	err := t.provider.Shutdown(ctx)
	if t.closer != nil {
		if cerr := t.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// InitializeTracing returns a no-op tracer when telemetry is disabled.
// Otherwise spans are exported as JSON to cfg.TraceFile, or stderr when no
// file is configured.
func InitializeTracing(cfg config.TelemetryConfig, version string) (*Tracing, error) {
	if !cfg.Enabled {
		return &Tracing{Tracer: noop.NewTracerProvider().Tracer(TracerName)}, nil
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer
	)
	if cfg.TraceFile != "" {
		f, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace file %s: %w", cfg.TraceFile, err)
		}
		w, closer = f, f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	return newTracing(sdktrace.NewSimpleSpanProcessor(exporter), cfg.ServiceName, version, closer), nil
}

func newTracing(processor sdktrace.SpanProcessor, serviceName, version string, closer io.Closer) *Tracing {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(version),
		attribute.String("service.instance.id", GenerateTraceID()),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithResource(res),
	)
	return &Tracing{
		Tracer:   tp.Tracer(TracerName, trace.WithInstrumentationVersion(version)),
		provider: tp,
		closer:   closer,
	}
}
