package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// ServiceName identifies this service in exported traces
	ServiceName = "smart-decide"
	// InstrumentationName names the tracer used for decision spans
	InstrumentationName = "github.com/benvon/smart-decide"
)

// InitTracer initializes the OpenTelemetry tracer provider.
// An empty endpoint falls back to the exporter default (localhost:4318).
func InitTracer(ctx context.Context, serviceName, endpoint string) (*sdktrace.TracerProvider, error) {
	if serviceName == "" {
		serviceName = ServiceName
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithInsecure(), // Use insecure for development; use WithTLSClientConfig for production
	}
	if endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}

// Shutdown gracefully shuts down the tracer provider
func Shutdown(ctx context.Context, tp *sdktrace.TracerProvider) error {
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}

// Tracer returns the decision tracer from the global provider.
// Without InitTracer the global provider is a no-op.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// Middleware returns router middleware that starts a server span per request
func Middleware(serviceName string) mux.MiddlewareFunc {
	if serviceName == "" {
		serviceName = ServiceName
	}
	return otelmux.Middleware(serviceName)
}

// TraceIDFromRequest returns the active trace id, or "" when the request is not sampled
func TraceIDFromRequest(r *http.Request) string {
	sc := trace.SpanContextFromContext(r.Context())
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
