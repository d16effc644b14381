package tracklight

import (
	"context"

	"github.com/uxsignals/tracklight/pkg/tracklight/model"
)

// startConfig holds per-Start behavior tweaks.
type startConfig struct {
	installPropertiesDone func(ctx context.Context) error
	firstOpenParams       func() model.Params
	trackFirstOpen        bool
}

func defaultStartConfig() startConfig {
	return startConfig{
		trackFirstOpen: true,
	}
}

// StartOption configures the startup sequence.
type StartOption func(*startConfig)

// WithInstallPropertiesCompletion runs fn after install-time user properties
// have been computed on the first ever cold launch, before the first-open
// event fires. Use it to seed app-specific install properties.
func WithInstallPropertiesCompletion(fn func(ctx context.Context) error) StartOption {
	return func(c *startConfig) {
		c.installPropertiesDone = fn
	}
}

// WithFirstOpenParams supplies extra parameters for the first-open event.
// The callback runs only when the event actually fires.
func WithFirstOpenParams(fn func() model.Params) StartOption {
	return func(c *startConfig) {
		c.firstOpenParams = fn
	}
}

// WithoutFirstOpenEvent suppresses the gated first-open event. Install-time
// user properties are still computed.
func WithoutFirstOpenEvent() StartOption {
	return func(c *startConfig) {
		c.trackFirstOpen = false
	}
}
