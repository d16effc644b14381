package tracklight

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/uxsignals/tracklight/pkg/tracklight/adaptor"
	"github.com/uxsignals/tracklight/pkg/tracklight/model"
	"github.com/uxsignals/tracklight/pkg/tracklight/observability"
)

// queuedEvent is an event captured before any adaptor was active.
type queuedEvent struct {
	event   model.Event
	params  model.Params
	addedAt time.Time
}

// eventBuffer queues events until adaptors are ready, then fans every event
// out to all of them. The queue is drained exactly once, strictly FIFO, by
// SetupAdaptors; each flushed event carries a timeDelta parameter with the
// seconds it waited.
type eventBuffer struct {
	logger  *slog.Logger
	metrics observability.MetricsRecorder

	mu       sync.Mutex
	queue    []queuedEvent
	adaptors []adaptor.Adaptor
}

func newEventBuffer(logger *slog.Logger, metrics observability.MetricsRecorder) *eventBuffer {
	return &eventBuffer{
		logger:  logger,
		metrics: metrics,
	}
}

// AddEvent dispatches the event to every active adaptor, or queues it when
// none are active yet. Returns true if the event was delivered immediately.
func (b *eventBuffer) AddEvent(ctx context.Context, event model.Event, params model.Params) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.adaptors) == 0 {
		b.queue = append(b.queue, queuedEvent{
			event:   event,
			params:  params,
			addedAt: time.Now(),
		})
		return false
	}

	b.dispatchLocked(ctx, event, params)
	return true
}

// SetupAdaptors installs the active adaptor set, replacing any prior one,
// and drains the queued events in arrival order. Adaptors added later are
// out of scope: the set is installed once per process.
func (b *eventBuffer) SetupAdaptors(ctx context.Context, adaptors []adaptor.Adaptor) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.adaptors = adaptors
	if len(b.adaptors) == 0 {
		// Nothing survived startup; keep the queue in case a later setup
		// installs a working set.
		return
	}
	if len(b.queue) == 0 {
		return
	}

	flushed := len(b.queue)
	for _, qe := range b.queue {
		elapsed := time.Since(qe.addedAt).Seconds()
		if elapsed < 0 {
			elapsed = 0
		}
		params := qe.params.Clone()
		params["timeDelta"] = elapsed
		b.dispatchLocked(ctx, qe.event, params)
	}
	b.queue = nil
	b.metrics.RecordBufferFlush(ctx, flushed)
}

// ActiveAdaptors returns the adaptors that survived startup.
func (b *eventBuffer) ActiveAdaptors() []adaptor.Adaptor {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]adaptor.Adaptor, len(b.adaptors))
	copy(out, b.adaptors)
	return out
}

// dispatchLocked forwards one event to every active adaptor. Each adaptor is
// independent: a failing or panicking adaptor never blocks the others, and
// its error is logged, not returned.
func (b *eventBuffer) dispatchLocked(ctx context.Context, event model.Event, params model.Params) {
	for _, ad := range b.adaptors {
		trimmed := ad.TrimEvent(event)
		err := safeTrack(ad, trimmed, params)
		b.metrics.RecordDelivery(ctx, ad.Name(), err)
		if err != nil {
			observability.LogDeliveryFailed(b.logger, ad.Name(), trimmed.Name, err)
			continue
		}
		observability.LogEventDelivered(b.logger, ad.Name(), trimmed.Name, params.Format())
	}
}

// safeTrack invokes Track, converting a panic into an error so a misbehaving
// adaptor cannot take down the caller.
func safeTrack(ad adaptor.Adaptor, event model.TrimmedEvent, params model.Params) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("adaptor panicked: %v", r)
		}
	}()
	return ad.Track(event, params)
}

// safeSet invokes Set with the same panic guard as safeTrack.
func safeSet(ad adaptor.Adaptor, property model.TrimmedProperty, value string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("adaptor panicked: %v", r)
		}
	}()
	return ad.Set(property, value)
}

// safeUnset invokes Unset with the same panic guard as safeTrack.
func safeUnset(ad adaptor.Adaptor, property model.TrimmedProperty) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("adaptor panicked: %v", r)
		}
	}()
	return ad.Unset(property)
}
