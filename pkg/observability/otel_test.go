package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracing_Disabled(t *testing.T) {
	logger := NewLogger(InfoLevel, TextFormat, &bytes.Buffer{})

	tp, err := InitTracing(context.Background(), TracingConfig{Enabled: false}, logger)

	assert.NoError(t, err)
	assert.Nil(t, tp)
	assert.NoError(t, ShutdownTracing(context.Background(), tp, logger))
}

// OTLP exporters do not connect at creation time, so an unreachable
// endpoint still yields a provider.
func TestInitTracing_Enabled(t *testing.T) {
	logger := NewLogger(InfoLevel, TextFormat, &bytes.Buffer{})

	tp, err := InitTracing(context.Background(), TracingConfig{
		Enabled:        true,
		Endpoint:       "localhost:4317",
		ServiceName:    "tclib-test",
		ServiceVersion: "0.0.0",
		Insecure:       true,
	}, logger)
	require.NoError(t, err)
	require.NotNil(t, tp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = ShutdownTracing(ctx, tp, logger)
}

func TestLoggerWithTraceContext(t *testing.T) {
	logger := NewLogger(InfoLevel, TextFormat, &bytes.Buffer{})

	entry := LoggerWithTraceContext(context.Background(), logger)
	assert.NotContains(t, entry.Data, "trace_id")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	entry = LoggerWithTraceContext(ctx, logger)
	assert.Equal(t, span.SpanContext().TraceID().String(), entry.Data["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry.Data["span_id"])
}
