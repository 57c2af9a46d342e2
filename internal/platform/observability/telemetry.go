package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/developer0071/Tech-House-programing/internal/platform/sessionctx"
)

const instrumentationName = "github.com/developer0071/Tech-House-programing"

// Tracer returns the package tracer from the global provider. Without an SDK installed the
// provider is a no-op, which is what the terminal program runs with.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Meter returns the named meter from the global provider.
func Meter(namespace string) metric.Meter {
	if namespace == "" {
		namespace = instrumentationName
	}
	return otel.GetMeterProvider().Meter(namespace)
}

// StartSpan starts an internal span and, when the span is recording, tags the context logger
// with its trace identifiers.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := Tracer().Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal), trace.WithAttributes(attrs...))
	spanCtx := span.SpanContext()
	if spanCtx.IsValid() {
		logger := sessionctx.Logger(ctx).With(
			zap.String("traceId", spanCtx.TraceID().String()),
			zap.String("spanId", spanCtx.SpanID().String()),
		)
		ctx = sessionctx.WithLogger(ctx, logger)
	}
	return ctx, span
}
