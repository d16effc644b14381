package adaptor

import (
	"context"
	"sync"
	"time"

	"github.com/uxsignals/tracklight/pkg/tracklight/model"
)

// TrackedEvent is one event delivered to a RecorderAdaptor.
type TrackedEvent struct {
	Event  model.TrimmedEvent
	Params model.Params
}

// PropertyChange is one property mutation delivered to a RecorderAdaptor.
// Removed is true for Unset calls.
type PropertyChange struct {
	Property model.TrimmedProperty
	Value    string
	Removed  bool
}

// RecorderAdaptor records everything it receives in memory. It backs the
// test suite and gives embedders an in-process tap on the event stream.
//
// StartDelay and StartErr simulate slow or failing destinations; TrackErr
// and SetErr make delivery calls fail (the core must swallow those).
type RecorderAdaptor struct {
	AdaptorName string
	StartDelay  time.Duration
	StartErr    error
	TrackErr    error
	SetErr      error

	mu         sync.Mutex
	started    bool
	events     []TrackedEvent
	properties []PropertyChange
	userID     string
	hasUserID  bool
	pseudoID   string
}

// NewRecorderAdaptor creates a recorder with the given name.
func NewRecorderAdaptor(name string) *RecorderAdaptor {
	return &RecorderAdaptor{AdaptorName: name}
}

// Name implements Adaptor.
func (a *RecorderAdaptor) Name() string {
	if a.AdaptorName == "" {
		return "recorder"
	}
	return a.AdaptorName
}

// Start implements Adaptor. It honors StartDelay (interruptible by ctx) and
// then returns StartErr.
func (a *RecorderAdaptor) Start(ctx context.Context, _ StartOptions) error {
	if a.StartDelay > 0 {
		select {
		case <-time.After(a.StartDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if a.StartErr != nil {
		return a.StartErr
	}

	a.mu.Lock()
	a.started = true
	a.mu.Unlock()
	return nil
}

// Started reports whether Start completed successfully.
func (a *RecorderAdaptor) Started() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.started
}

// Track implements Adaptor.
func (a *RecorderAdaptor) Track(event model.TrimmedEvent, params model.Params) error {
	if a.TrackErr != nil {
		return a.TrackErr
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, TrackedEvent{Event: event, Params: params.Clone()})
	return nil
}

// Set implements Adaptor.
func (a *RecorderAdaptor) Set(property model.TrimmedProperty, value string) error {
	if a.SetErr != nil {
		return a.SetErr
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.properties = append(a.properties, PropertyChange{Property: property, Value: value})
	return nil
}

// Unset implements Adaptor.
func (a *RecorderAdaptor) Unset(property model.TrimmedProperty) error {
	if a.SetErr != nil {
		return a.SetErr
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.properties = append(a.properties, PropertyChange{Property: property, Removed: true})
	return nil
}

// TrimEvent implements Adaptor. Recorder applies no truncation.
func (a *RecorderAdaptor) TrimEvent(event model.Event) model.TrimmedEvent {
	return model.TrimmedEvent{Name: event.Name}
}

// TrimProperty implements Adaptor.
func (a *RecorderAdaptor) TrimProperty(property model.Property) model.TrimmedProperty {
	return model.TrimmedProperty{Name: property.Name}
}

// SetUserID implements UserIDWriter. An empty id clears the stored value.
func (a *RecorderAdaptor) SetUserID(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.userID = id
	a.hasUserID = id != ""
}

// UserID implements UserIDReader.
func (a *RecorderAdaptor) UserID() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userID, a.hasUserID
}

// SetUserPseudoID seeds the pseudo id returned by UserPseudoID.
func (a *RecorderAdaptor) SetUserPseudoID(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pseudoID = id
}

// UserPseudoID implements PseudoIDProvider.
func (a *RecorderAdaptor) UserPseudoID() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pseudoID, a.pseudoID != ""
}

// Events returns a copy of the recorded events in delivery order.
func (a *RecorderAdaptor) Events() []TrackedEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]TrackedEvent, len(a.events))
	copy(out, a.events)
	return out
}

// EventNames returns the recorded event names in delivery order.
func (a *RecorderAdaptor) EventNames() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, len(a.events))
	for i, e := range a.events {
		names[i] = e.Event.Name
	}
	return names
}

// Properties returns a copy of the recorded property changes in order.
func (a *RecorderAdaptor) Properties() []PropertyChange {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]PropertyChange, len(a.properties))
	copy(out, a.properties)
	return out
}

// LastPropertyValue returns the most recent value set for a property name.
func (a *RecorderAdaptor) LastPropertyValue(name string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := len(a.properties) - 1; i >= 0; i-- {
		if a.properties[i].Property.Name == name {
			if a.properties[i].Removed {
				return "", false
			}
			return a.properties[i].Value, true
		}
	}
	return "", false
}

// Reset clears all recorded events and properties.
func (a *RecorderAdaptor) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = nil
	a.properties = nil
}
