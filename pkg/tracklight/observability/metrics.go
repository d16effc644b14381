package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome classifies what happened to a tracked event.
type Outcome string

// Tracking outcomes.
const (
	OutcomeDelivered     Outcome = "delivered"
	OutcomeQueued        Outcome = "queued"
	OutcomeFiltered      Outcome = "filtered"
	OutcomeGatedLifetime Outcome = "gated_lifetime"
	OutcomeGatedSession  Outcome = "gated_session"
)

// MetricsRecorder records tracklight metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEventTracked records a track() call and its outcome.
	RecordEventTracked(ctx context.Context, eventName string, outcome Outcome)

	// RecordDelivery records one delivery attempt to one adaptor.
	RecordDelivery(ctx context.Context, adaptorName string, err error)

	// RecordAdaptorStart records an adaptor start attempt with its duration.
	RecordAdaptorStart(ctx context.Context, adaptorName string, duration time.Duration, err error)

	// RecordBufferFlush records the number of events drained from the buffer.
	RecordBufferFlush(ctx context.Context, count int)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	eventsTracked   metric.Int64Counter
	deliveries      metric.Int64Counter
	deliveryErrors  metric.Int64Counter
	adaptorStartMs  metric.Float64Histogram
	bufferedFlushed metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("tracklight")

	eventsTracked, err := meter.Int64Counter("tracklight.events.tracked",
		metric.WithDescription("Number of track calls by outcome"),
	)
	if err != nil {
		return nil, err
	}

	deliveries, err := meter.Int64Counter("tracklight.deliveries",
		metric.WithDescription("Number of event deliveries to adaptors"),
	)
	if err != nil {
		return nil, err
	}

	deliveryErrors, err := meter.Int64Counter("tracklight.delivery.errors",
		metric.WithDescription("Number of swallowed adaptor delivery errors"),
	)
	if err != nil {
		return nil, err
	}

	adaptorStartMs, err := meter.Float64Histogram("tracklight.adaptor.start_ms",
		metric.WithDescription("Adaptor start latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	bufferedFlushed, err := meter.Int64Counter("tracklight.buffer.flushed",
		metric.WithDescription("Number of queued events flushed after startup"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		eventsTracked:   eventsTracked,
		deliveries:      deliveries,
		deliveryErrors:  deliveryErrors,
		adaptorStartMs:  adaptorStartMs,
		bufferedFlushed: bufferedFlushed,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder backed by the global OTel
// meter provider. Falls back to NoopMetrics if meter creation fails.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		return NoopMetrics{}
	}
	return m
}

// RecordEventTracked implements MetricsRecorder.
func (m *otelMetrics) RecordEventTracked(ctx context.Context, eventName string, outcome Outcome) {
	m.eventsTracked.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", eventName),
		attribute.String("outcome", string(outcome)),
	))
}

// RecordDelivery implements MetricsRecorder.
func (m *otelMetrics) RecordDelivery(ctx context.Context, adaptorName string, err error) {
	attrs := metric.WithAttributes(attribute.String("adaptor", adaptorName))
	m.deliveries.Add(ctx, 1, attrs)
	if err != nil {
		m.deliveryErrors.Add(ctx, 1, attrs)
	}
}

// RecordAdaptorStart implements MetricsRecorder.
func (m *otelMetrics) RecordAdaptorStart(ctx context.Context, adaptorName string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.adaptorStartMs.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(
		attribute.String("adaptor", adaptorName),
		attribute.String("status", status),
	))
}

// RecordBufferFlush implements MetricsRecorder.
func (m *otelMetrics) RecordBufferFlush(ctx context.Context, count int) {
	m.bufferedFlushed.Add(ctx, int64(count))
}
