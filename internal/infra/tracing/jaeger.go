package tracing

import (
	"context"
	"fmt"

	"github.com/tharunkumardeveloper/truthlensai/internal/pipeline"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const ServiceName = "truthlens-analysis-service"

// InitTracer exports spans over OTLP/HTTP to Jaeger. The service version tracks
// the version stamped on generated reports.
func InitTracer(ctx context.Context, jaegerEndpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(jaegerEndpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(ServiceName),
			semconv.ServiceVersionKey.String(pipeline.ProductVersion),
		)),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}

// Tracer returns the analysis tracer from the global provider, so spans
// started before InitTracer are no-ops rather than errors.
func Tracer() trace.Tracer {
	return otel.Tracer(ServiceName, trace.WithInstrumentationVersion(pipeline.ProductVersion))
}
