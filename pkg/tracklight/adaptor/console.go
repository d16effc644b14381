package adaptor

import (
	"context"
	"log/slog"

	"github.com/uxsignals/tracklight/pkg/tracklight/model"
)

// Console name limits, matching common vendor constraints.
const (
	consoleEventNameMax    = 40
	consolePropertyNameMax = 24
)

// ConsoleAdaptor logs every event and property change through slog.
// Useful during development and as a reference implementation.
type ConsoleAdaptor struct {
	logger *slog.Logger
}

// NewConsoleAdaptor creates a console adaptor.
// A nil logger falls back to slog.Default().
func NewConsoleAdaptor(logger *slog.Logger) *ConsoleAdaptor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleAdaptor{logger: logger}
}

// Name implements Adaptor.
func (a *ConsoleAdaptor) Name() string { return "console" }

// Start implements Adaptor. It never fails.
func (a *ConsoleAdaptor) Start(_ context.Context, _ StartOptions) error {
	return nil
}

// Track implements Adaptor.
func (a *ConsoleAdaptor) Track(event model.TrimmedEvent, params model.Params) error {
	if formatted := params.Format(); formatted != "" {
		a.logger.Info("sendEvent",
			slog.String("event", event.Name),
			slog.String("params", formatted),
		)
	} else {
		a.logger.Info("sendEvent", slog.String("event", event.Name))
	}
	return nil
}

// Set implements Adaptor.
func (a *ConsoleAdaptor) Set(property model.TrimmedProperty, value string) error {
	a.logger.Info("setUserProperty",
		slog.String("property", property.Name),
		slog.String("value", value),
	)
	return nil
}

// Unset implements Adaptor.
func (a *ConsoleAdaptor) Unset(property model.TrimmedProperty) error {
	a.logger.Info("unsetUserProperty", slog.String("property", property.Name))
	return nil
}

// TrimEvent implements Adaptor.
func (a *ConsoleAdaptor) TrimEvent(event model.Event) model.TrimmedEvent {
	return model.TrimmedEvent{Name: TrimName(event.Name, consoleEventNameMax)}
}

// TrimProperty implements Adaptor.
func (a *ConsoleAdaptor) TrimProperty(property model.Property) model.TrimmedProperty {
	return model.TrimmedProperty{Name: TrimName(property.Name, consolePropertyNameMax)}
}
