package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestStartAndEndSpan(t *testing.T) {
	rec := withRecorder(t)

	_, span := StartSpan(context.Background(), "table.Load", attribute.String("source", "a.csv"))
	EndSpan(span, nil)

	_, failed := StartSpan(context.Background(), "table.Load")
	EndSpan(failed, errors.New("no such file"))

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "table.Load", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("source", "a.csv"))
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "no such file", spans[1].Status().Description)
}

func TestInitTracingNone(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ExporterType: "none"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracingStdout(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := InitTracing(TracingConfig{
		ServiceName:    "delimtab-test",
		ServiceVersion: "test",
		ExporterType:   "stdout",
		Writer:         &buf,
	})
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "export.json")
	EndSpan(span, nil)
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "export.json")
}

func TestInitTracingUnknownExporter(t *testing.T) {
	_, err := InitTracing(TracingConfig{ExporterType: "jaeger"})
	assert.Error(t, err)
}
