package logging

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// tracerName mirrors the way the original's spans were all created under
// one named Level::INFO target; here it's one tracer name shared by the
// whole process.
const tracerName = "rovmesh"

// InitTracing installs a basic SDK tracer provider. Without an exporter
// configured, spans are recorded but not shipped anywhere — the logging
// backend itself is out of scope (spec.md §1); this just gives a
// deployment somewhere to plug an exporter in.
func InitTracing() func(context.Context) error {
	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

// Span starts a span named name under the rovmesh tracer, the Go
// equivalent of the original's span!(Level::INFO, name).entered() calls
// wrapping each side thread's body (orientation.rs, depth.rs, pwm.rs).
func Span(ctx context.Context, name string) (context.Context, oteltrace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name)
}
