package tracklight

import (
	"context"
	"strconv"

	"github.com/uxsignals/tracklight/pkg/tracklight/model"
	"github.com/uxsignals/tracklight/pkg/tracklight/observability"
)

// Track sends an event to every started adaptor, or buffers it when none
// has started yet. Nil-valued params are stripped; the configured filter
// runs first and may drop the event entirely.
func (a *Analytics) Track(ctx context.Context, event model.Event, params model.Params) {
	a.trackEvent(ctx, event, params, model.LogAlways)
}

// TrackGated tracks an event under a log condition. Lifetime gates persist
// through storage and survive restarts; session gates reset on every start.
func (a *Analytics) TrackGated(ctx context.Context, event model.Event, params model.Params, condition model.LogCondition) {
	a.trackEvent(ctx, event, params, condition)
}

func (a *Analytics) trackEvent(ctx context.Context, event model.Event, params model.Params, condition model.LogCondition) {
	if !a.cfg.TrackFilter(event, params) {
		a.metrics.RecordEventTracked(ctx, event.Name, observability.OutcomeFiltered)
		return
	}

	params = params.WithoutNil()
	prefixed := a.prefixEvent(event)

	switch condition {
	case model.LogOnlyOncePerLifetime:
		key := onlyOncePrefix + prefixed.Name
		if a.state.getBool(ctx, key) {
			a.metrics.RecordEventTracked(ctx, prefixed.Name, observability.OutcomeGatedLifetime)
			return
		}
		// Mark before dispatch. A crash between the mark and the send loses
		// the event rather than duplicating it.
		if err := a.state.set(ctx, key, true); err != nil {
			observability.LogStorageWarning(a.logger, "lifetime gate", err)
		}
	case model.LogOnlyOncePerAppSession:
		a.mu.Lock()
		_, seen := a.sessionEvents[prefixed.Name]
		if !seen {
			a.sessionEvents[prefixed.Name] = struct{}{}
		}
		a.mu.Unlock()
		if seen {
			a.metrics.RecordEventTracked(ctx, prefixed.Name, observability.OutcomeGatedSession)
			return
		}
	}

	if a.buffer.AddEvent(ctx, prefixed, params) {
		a.metrics.RecordEventTracked(ctx, prefixed.Name, observability.OutcomeDelivered)
	} else {
		a.metrics.RecordEventTracked(ctx, prefixed.Name, observability.OutcomeQueued)
	}
}

// Set persists a user property and forwards it to every started adaptor.
// The returned error reports the storage write only; adaptor failures are
// logged and swallowed.
func (a *Analytics) Set(ctx context.Context, property model.Property, value string) error {
	prefixed := a.prefixProperty(property)
	err := a.state.set(ctx, userPropertyPrefix+prefixed.Name, value)

	for _, ad := range a.buffer.ActiveAdaptors() {
		trimmed := ad.TrimProperty(prefixed)
		if setErr := safeSet(ad, trimmed, value); setErr != nil {
			observability.LogPropertyForwardFailed(a.logger, ad.Name(), trimmed.Name, setErr)
		}
	}
	return err
}

// Unset removes a persisted user property and clears it at every started
// adaptor.
func (a *Analytics) Unset(ctx context.Context, property model.Property) error {
	prefixed := a.prefixProperty(property)
	err := a.state.set(ctx, userPropertyPrefix+prefixed.Name, nil)

	for _, ad := range a.buffer.ActiveAdaptors() {
		trimmed := ad.TrimProperty(prefixed)
		if unsetErr := safeUnset(ad, trimmed); unsetErr != nil {
			observability.LogPropertyForwardFailed(a.logger, ad.Name(), trimmed.Name, unsetErr)
		}
	}
	return err
}

// Get reads a persisted user property. ok is false when it was never set.
func (a *Analytics) Get(ctx context.Context, property model.Property) (string, bool, error) {
	prefixed := a.prefixProperty(property)
	value, ok := a.state.getString(ctx, userPropertyPrefix+prefixed.Name)
	return value, ok, nil
}

// setLogged is Set for startup paths where a storage failure must not
// abort the sequence.
func (a *Analytics) setLogged(ctx context.Context, property model.Property, value string) {
	if err := a.Set(ctx, property, value); err != nil {
		observability.LogStorageWarning(a.logger, "set "+property.Name, err)
	}
}

// counterNext returns the stored counter value plus one, or 1 when the
// counter is absent or unparseable.
func (a *Analytics) counterNext(ctx context.Context, property model.Property) int {
	value, ok, _ := a.Get(ctx, property)
	if !ok {
		return 1
	}
	prev, err := strconv.Atoi(value)
	if err != nil {
		return 1
	}
	return prev + 1
}

// prefixEvent applies the automatic or manual event prefix.
func (a *Analytics) prefixEvent(event model.Event) model.Event {
	if event.Internal {
		return event.WithPrefix(a.cfg.AutomaticPrefix.EventPrefix)
	}
	return event.WithPrefix(a.cfg.ManualPrefix.EventPrefix)
}

// prefixProperty applies the automatic or manual property prefix.
func (a *Analytics) prefixProperty(property model.Property) model.Property {
	if property.Internal {
		return property.WithPrefix(a.cfg.AutomaticPrefix.PropertyPrefix)
	}
	return property.WithPrefix(a.cfg.ManualPrefix.PropertyPrefix)
}
