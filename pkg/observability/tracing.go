package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Tracer returns a tracer from the global provider. Until an exporter installs a
// provider this is a no-op tracer.
func Tracer(service string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(service)
}
