// Package model defines the value types shared by the tracklight core and
// its adaptors: event and user-property descriptors, tracking parameters,
// view/funnel metadata, and the built-in event vocabulary.
//
// Descriptors are immutable values. Prefixing produces a new descriptor and
// never mutates the original.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Event is a named, taxonomically-typed event before adaptor trimming.
// Internal marks events that belong to the built-in vocabulary; they receive
// the automatic-tracking prefix instead of the manual one.
type Event struct {
	Name     string
	Internal bool
}

// NewEvent creates an app-defined (manually tracked) event descriptor.
func NewEvent(name string) Event {
	return Event{Name: name}
}

// NewInternalEvent creates a built-in (automatically tracked) event descriptor.
func NewInternalEvent(name string) Event {
	return Event{Name: name, Internal: true}
}

// WithPrefix returns a copy of the event with the prefix prepended to its name.
func (e Event) WithPrefix(prefix string) Event {
	return Event{Name: prefix + e.Name, Internal: e.Internal}
}

// TrimmedEvent is an event name after adaptor-specific truncation.
type TrimmedEvent struct {
	Name string
}

// Property is a named user property before adaptor trimming.
type Property struct {
	Name     string
	Internal bool
}

// NewProperty creates an app-defined user property descriptor.
func NewProperty(name string) Property {
	return Property{Name: name}
}

// NewInternalProperty creates a built-in user property descriptor.
func NewInternalProperty(name string) Property {
	return Property{Name: name, Internal: true}
}

// WithPrefix returns a copy of the property with the prefix prepended.
func (p Property) WithPrefix(prefix string) Property {
	return Property{Name: prefix + p.Name, Internal: p.Internal}
}

// TrimmedProperty is a user property name after adaptor-specific truncation.
type TrimmedProperty struct {
	Name string
}

// Params carries event parameters. Values are strings, bools, or numbers.
type Params map[string]any

// WithoutNil returns a copy of the params with nil values removed.
// A nil receiver yields an empty, non-nil map.
func (p Params) WithoutNil() Params {
	out := make(Params, len(p))
	for k, v := range p {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy of the params.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Format renders params as "k:v" pairs joined by ", ", keys sorted
// lexicographically. Returns "" for empty params.
func (p Params) Format() string {
	if len(p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%s", k, FormatValue(p[k])))
	}
	return strings.Join(parts, ", ")
}

// FormatValue stringifies a single parameter value.
func FormatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// LogCondition controls how often an event is allowed to fire.
type LogCondition string

const (
	// LogAlways delivers the event on every call.
	LogAlways LogCondition = "logAlways"

	// LogOnlyOncePerLifetime delivers at most once per installation.
	// The guard flag is persisted and survives process restarts.
	LogOnlyOncePerLifetime LogCondition = "logOnlyOncePerLifetime"

	// LogOnlyOncePerAppSession delivers at most once per process.
	// The guard set is in-memory and resets on every start.
	LogOnlyOncePerAppSession LogCondition = "logOnlyOncePerAppSession"
)

// FunnelStep positions a view inside a multi-step flow.
// Every field is independently optional; HasStep distinguishes an unset
// ordinal from step zero.
type FunnelStep struct {
	Name     string
	Step     int
	HasStep  bool
	Optional *bool
	Final    *bool
}

// View describes a screen being shown. Name is required; Type and Funnel
// are optional.
type View struct {
	Name   string
	Type   string
	Funnel *FunnelStep
}

// NewView creates a view descriptor with an optional type.
func NewView(name, viewType string) View {
	return View{Name: name, Type: viewType}
}

// SecondaryView is a view shown inside or over a main view (e.g. a dialog).
type SecondaryView struct {
	Name string
	Type string
	Main View
}

// AddViewParams enriches params with view metadata under the given key
// prefix, including optional funnel details.
func AddViewParams(view View, params Params, prefix string) {
	params[prefix+"name"] = view.Name
	if view.Type != "" {
		params[prefix+"type"] = view.Type
	}
	if view.Funnel == nil {
		return
	}
	f := view.Funnel
	if f.Name != "" {
		params[prefix+"funnel_name"] = f.Name
	}
	if f.HasStep {
		params[prefix+"funnel_step"] = f.Step
	}
	if f.Optional != nil {
		params[prefix+"funnel_step_is_optional"] = *f.Optional
	}
	if f.Final != nil {
		params[prefix+"funnel_step_is_final"] = *f.Final
	}
}

// InstallType identifies the channel the app was installed through.
type InstallType string

// Install channels.
const (
	InstallAppStore          InstallType = "AppStore"
	InstallTestFlight        InstallType = "TestFlight"
	InstallXcode             InstallType = "Xcode"
	InstallXcodeWithDebugger InstallType = "XcodeAndDebuggerAttached"
)

// ProcessType distinguishes the main app process from extensions.
type ProcessType string

// Process types.
const (
	ProcessTypeApp          ProcessType = "app"
	ProcessTypeAppExtension ProcessType = "appExtension"
)

// PrefixConfig holds the name prefixes applied to events and user properties.
type PrefixConfig struct {
	EventPrefix    string
	PropertyPrefix string
}

// TrackFilter decides whether an event should be tracked at all.
// Returning false drops the event silently.
type TrackFilter func(event Event, params Params) bool
