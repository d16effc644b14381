package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the tracklight tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("tracklight")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartStartupSpan starts a span covering the whole startup sequence.
	StartStartupSpan(ctx context.Context, sessionID string) (context.Context, trace.Span)

	// StartAdaptorSpan starts a span for one adaptor's start call.
	// The adaptor span should be a child of the startup span.
	StartAdaptorSpan(ctx context.Context, adaptorName string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function.
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartStartupSpan starts a span covering the whole startup sequence.
func (m *otelSpanManager) StartStartupSpan(ctx context.Context, sessionID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "tracklight.start",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartAdaptorSpan starts a span for one adaptor's start call.
func (m *otelSpanManager) StartAdaptorSpan(ctx context.Context, adaptorName string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "tracklight.adaptor.start",
		trace.WithAttributes(
			attribute.String("adaptor.name", adaptorName),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
