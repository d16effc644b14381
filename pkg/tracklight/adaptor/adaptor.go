// Package adaptor defines the destination contract consumed by the
// tracklight core, the optional user-id capability interfaces, and a couple
// of built-in adaptors (console logging, in-memory recording).
//
// Adaptors receive trimmed events and user properties. Trimming is
// destination-specific truncation so names fit vendor limits; it must be a
// pure function of the input and the adaptor's configuration.
package adaptor

import (
	"context"
	"unicode/utf8"

	"github.com/uxsignals/tracklight/pkg/tracklight/model"
)

// Provider is the narrow surface of the analytics engine exposed to adaptors
// during start, letting them read or seed user properties.
type Provider interface {
	// Set persists a user property and forwards it to active adaptors.
	Set(ctx context.Context, property model.Property, value string) error

	// Get reads a persisted user property. ok is false when it was never set.
	Get(ctx context.Context, property model.Property) (value string, ok bool, err error)
}

// StartOptions is passed to every adaptor on start.
type StartOptions struct {
	InstallType model.InstallType
	Provider    Provider
}

// Adaptor is a pluggable destination for events and user properties.
//
// Track, Set, and Unset are fire-and-forget from the core's point of view:
// the returned error reports synchronous validation failures (e.g. a
// platform-reserved name) and is logged, never retried; transport errors are
// the adaptor's own responsibility.
type Adaptor interface {
	// Name identifies the adaptor in logs.
	Name() string

	// Start initializes the adaptor. It may block; the core time-boxes the
	// call and drops the adaptor on error or timeout.
	Start(ctx context.Context, opts StartOptions) error

	// Track forwards a trimmed event with optional params.
	Track(event model.TrimmedEvent, params model.Params) error

	// Set forwards a trimmed user property value.
	Set(property model.TrimmedProperty, value string) error

	// Unset clears a trimmed user property at the destination.
	Unset(property model.TrimmedProperty) error

	// TrimEvent truncates an event name to destination limits. Pure.
	TrimEvent(event model.Event) model.TrimmedEvent

	// TrimProperty truncates a property name to destination limits. Pure.
	TrimProperty(property model.Property) model.TrimmedProperty
}

// UserIDWriter is implemented by adaptors whose destination accepts a user
// id. An empty id clears the destination's user id.
type UserIDWriter interface {
	SetUserID(id string)
}

// UserIDReader is implemented by adaptors that can read the user id back.
type UserIDReader interface {
	UserID() (string, bool)
}

// PseudoIDProvider is implemented by adaptors whose destination assigns an
// anonymous per-install identifier.
type PseudoIDProvider interface {
	UserPseudoID() (string, bool)
}

// TrimName truncates s to at most max bytes without splitting a rune.
func TrimName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
