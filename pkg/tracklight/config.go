package tracklight

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/uxsignals/tracklight/pkg/tracklight/adaptor"
	"github.com/uxsignals/tracklight/pkg/tracklight/config"
	"github.com/uxsignals/tracklight/pkg/tracklight/model"
	"github.com/uxsignals/tracklight/pkg/tracklight/observability"
	"github.com/uxsignals/tracklight/pkg/tracklight/storage"
)

// defaultAdaptorStartTimeout bounds each adaptor's start call.
const defaultAdaptorStartTimeout = 10 * time.Second

// defaultStuckCorrectionWindow bounds how long after a stuck-UI error a
// follow-up view show still counts as a correction.
const defaultStuckCorrectionWindow = 30 * time.Second

// InstallOverrides carries install-time environment facts the host app
// detects itself.
type InstallOverrides struct {
	IsJailbroken *bool
	UIAppearance string
	DynamicType  string
}

// Config is the construction-time configuration of the Analytics engine.
// It is read once by New and never mutated afterwards.
type Config struct {
	// AnalyticsVersion is the version of the app's analytics schema,
	// stored as a user property on every start.
	AnalyticsVersion string

	// Adaptors are the destinations events fan out to.
	Adaptors []adaptor.Adaptor

	// ProcessType distinguishes the main app from extensions.
	// Default: ProcessTypeApp.
	ProcessType model.ProcessType

	// EnabledProcessTypes lists the process types allowed to log.
	// Default: app and appExtension.
	EnabledProcessTypes []model.ProcessType

	// InstallType is the channel the app was installed through.
	// Default: InstallXcode.
	InstallType model.InstallType

	// Storage persists counters and user properties.
	// Default: a volatile in-memory store (counters reset every start).
	Storage storage.Store

	// InstallProperties are computed once on the first ever cold launch.
	// Default: model.DefaultInstallProperties.
	InstallProperties []model.Property

	// AdaptorStartTimeout bounds each adaptor's start call.
	// Default: 10 s.
	AdaptorStartTimeout time.Duration

	// StuckCorrectionWindow is how long after a stuck-UI error a follow-up
	// view show still emits a correction event. Default: 30 s.
	StuckCorrectionWindow time.Duration

	// AutomaticPrefix applies to internal (built-in) events and properties.
	AutomaticPrefix model.PrefixConfig

	// ManualPrefix applies to app-defined events and properties.
	ManualPrefix model.PrefixConfig

	// TrackFilter drops events before dispatch when it returns false.
	// Default: allow all.
	TrackFilter model.TrackFilter

	// AppVersion, BuildNumber, and OSVersion feed the version-update events
	// and install properties.
	AppVersion  string
	BuildNumber string
	OSVersion   string

	// DisableLifecycleEvents turns off app_open/app_close tracking.
	DisableLifecycleEvents bool

	// Lifecycle is the phase source observed while running. Optional.
	Lifecycle *Notifier

	// InstallOverrides seed jailbreak/appearance/dynamic-type install
	// properties. Optional.
	InstallOverrides InstallOverrides

	// Logger receives diagnostic output. Default: slog.Default().
	Logger *slog.Logger

	// Metrics records tracking metrics. Default: OTel via the global meter
	// provider. Use observability.NoopMetrics to disable.
	Metrics observability.MetricsRecorder

	// Spans traces the startup sequence. Default: disabled.
	Spans observability.SpanManager
}

// withDefaults returns a copy of the config with all defaults applied.
func (c Config) withDefaults() Config {
	if c.ProcessType == "" {
		c.ProcessType = model.ProcessTypeApp
	}
	if c.EnabledProcessTypes == nil {
		c.EnabledProcessTypes = []model.ProcessType{model.ProcessTypeApp, model.ProcessTypeAppExtension}
	}
	if c.InstallType == "" {
		c.InstallType = model.InstallXcode
	}
	if c.Storage == nil {
		c.Storage = storage.NewMemoryStore()
	}
	if c.InstallProperties == nil {
		c.InstallProperties = model.DefaultInstallProperties
	}
	if c.AdaptorStartTimeout <= 0 {
		c.AdaptorStartTimeout = defaultAdaptorStartTimeout
	}
	if c.StuckCorrectionWindow <= 0 {
		c.StuckCorrectionWindow = defaultStuckCorrectionWindow
	}
	if c.TrackFilter == nil {
		c.TrackFilter = func(model.Event, model.Params) bool { return true }
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Metrics == nil {
		c.Metrics = observability.NewMetricsRecorder()
	}
	if c.Spans == nil {
		c.Spans = observability.NoopSpanManager{}
	}
	return c
}

// LoadConfigFile builds a Config from a YAML or JSON file. Adaptors listed
// under the adaptors key are constructed through the registry (nil means
// adaptor.DefaultRegistry); storage, filter, and observability hooks are
// code-level concerns and stay at their defaults.
//
// Recognized keys: analytics_version, process_type, install_type,
// app_version, build_number, os_version, adaptor_start_timeout (ms),
// disable_lifecycle_events, automatic_prefix / manual_prefix
// (event_prefix, property_prefix), adaptors ([{kind: ..., ...}]).
func LoadConfigFile(path string, registry *adaptor.Registry) (Config, error) {
	if registry == nil {
		registry = adaptor.DefaultRegistry
	}

	fc, err := config.FromFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AnalyticsVersion:       fc.String("analytics_version", ""),
		ProcessType:            model.ProcessType(fc.String("process_type", "")),
		InstallType:            model.InstallType(fc.String("install_type", "")),
		AppVersion:             fc.String("app_version", ""),
		BuildNumber:            fc.String("build_number", ""),
		OSVersion:              fc.String("os_version", ""),
		AdaptorStartTimeout:    fc.Duration("adaptor_start_timeout", 0),
		DisableLifecycleEvents: fc.Bool("disable_lifecycle_events", false),
		AutomaticPrefix: model.PrefixConfig{
			EventPrefix:    fc.Sub("automatic_prefix").String("event_prefix", ""),
			PropertyPrefix: fc.Sub("automatic_prefix").String("property_prefix", ""),
		},
		ManualPrefix: model.PrefixConfig{
			EventPrefix:    fc.Sub("manual_prefix").String("event_prefix", ""),
			PropertyPrefix: fc.Sub("manual_prefix").String("property_prefix", ""),
		},
	}

	raw, ok := fc.Raw()["adaptors"].([]any)
	if !ok {
		return cfg, nil
	}
	for i, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			return Config{}, fmt.Errorf("adaptors[%d]: expected a mapping", i)
		}
		ac := config.New(m)
		kind := ac.String("kind", "")
		if kind == "" {
			return Config{}, fmt.Errorf("adaptors[%d]: missing kind", i)
		}
		ad, err := registry.New(kind, ac)
		if err != nil {
			return Config{}, fmt.Errorf("adaptors[%d]: %w", i, err)
		}
		cfg.Adaptors = append(cfg.Adaptors, ad)
	}
	return cfg, nil
}
