package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracer(t *testing.T) {
	ctx := context.Background()

	tp, err := InitTracer(ctx, "http://127.0.0.1:4318/v1/traces")
	require.NoError(t, err)
	defer tp.Shutdown(ctx)

	assert.Same(t, tp, otel.GetTracerProvider())

	_, span := Tracer().Start(ctx, "fetch_media")
	defer span.End()
	assert.True(t, span.SpanContext().IsValid())

	ro, ok := span.(sdktrace.ReadOnlySpan)
	require.True(t, ok)
	assert.Equal(t, ServiceName, ro.InstrumentationScope().Name)
}
