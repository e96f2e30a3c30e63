package tracing

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer atomic.Pointer[trace.Tracer]

// SetTracer sets the tracer to be used for tracing. A nil tracer disables tracing.
func SetTracer(t trace.Tracer) {
	if t == nil {
		tracer.Store(nil)
		return
	}
	tracer.Store(&t)
}

// StartSpan starts a new span with the given name and returns the context and span.
// Without a tracer it returns the span already on ctx (a no-op span if none).
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	t := tracer.Load()
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return (*t).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// GetActiveSpan returns the active span from the context, or nil
func GetActiveSpan(ctx context.Context) trace.Span {
	if tracer.Load() == nil {
		return nil
	}
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	return span
}

// GetTraceID returns the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	span := GetActiveSpan(ctx)
	if span == nil {
		return ""
	}
	return span.SpanContext().TraceID().String()
}

// RecordError records err on the active span, if any
func RecordError(ctx context.Context, err error) {
	if span := GetActiveSpan(ctx); span != nil && err != nil {
		span.RecordError(err)
	}
}
