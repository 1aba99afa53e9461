// Package observability provides tracing for table loads and exports
package observability

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the tracer used by all delimtab packages
const InstrumentationName = "github.com/ajitpratap0/delimtab"

// TracingConfig contains tracing configuration
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	ExporterType   string // "stdout" or "none"
	SamplingRate   float64
	Writer         io.Writer
}

// ShutdownFunc flushes and stops the tracer provider
type ShutdownFunc func(context.Context) error

// InitTracing installs a global tracer provider. With ExporterType "none"
// the global no-op provider is left in place.
func InitTracing(config TracingConfig) (ShutdownFunc, error) {
	if config.ExporterType == "" || config.ExporterType == "none" {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdktrace.SpanExporter
	switch config.ExporterType {
	case "stdout":
		w := config.Writer
		if w == nil {
			w = os.Stderr
		}
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", config.ExporterType)
	}

	var sampler sdktrace.Sampler
	if config.SamplingRate <= 0 || config.SamplingRate >= 1.0 {
		sampler = sdktrace.AlwaysSample()
	} else {
		sampler = sdktrace.TraceIDRatioBased(config.SamplingRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		sdktrace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// Tracer returns the delimtab tracer from the global provider
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// StartSpan starts a span named operation with the given attributes
func StartSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, operation, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
