package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Init installs a global tracer provider so ledger spans get real trace
// ids, which the logger attaches to every event. Spans are sampled but not
// exported anywhere; pass extra span processors to ship them.
func Init(service string, enabled bool, processors ...sdktrace.SpanProcessor) trace.TracerProvider {
	if !enabled {
		return otel.GetTracerProvider()
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", service),
		)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp
}

func Shutdown(ctx context.Context, tp trace.TracerProvider) error {
	if p, ok := tp.(*sdktrace.TracerProvider); ok {
		return p.Shutdown(ctx)
	}
	return nil
}
