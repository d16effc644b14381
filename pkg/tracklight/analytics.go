package tracklight

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uxsignals/tracklight/pkg/tracklight/adaptor"
	"github.com/uxsignals/tracklight/pkg/tracklight/model"
	"github.com/uxsignals/tracklight/pkg/tracklight/observability"
)

type enginePhase int

const (
	phaseCreated enginePhase = iota
	phaseStarting
	phaseRunning
	phaseStopped
)

// Analytics orchestrates event tracking across a set of adaptors. Events
// tracked before Start completes are buffered and replayed in order once the
// adaptors are up; user properties and gating counters persist through the
// configured storage backend.
//
// All methods are safe for concurrent use. Track methods never return
// errors: adaptor failures are logged and swallowed so instrumentation can
// never break the host app.
type Analytics struct {
	cfg     Config
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	state  *stateCache
	buffer *eventBuffer

	sessionID string

	mu              sync.Mutex
	phase           enginePhase
	sessionEvents   map[string]struct{}
	lastView        *model.View
	watcher         *stuckWatcher
	lifecycleCancel func()
	firstActivation bool
}

// New creates an Analytics engine from the given configuration. Call Start
// to bring the adaptors up; tracking before Start buffers events in memory.
func New(cfg Config) *Analytics {
	cfg = cfg.withDefaults()
	return &Analytics{
		cfg:             cfg,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		spans:           cfg.Spans,
		state:           newStateCache(cfg.Storage, cfg.Logger),
		buffer:          newEventBuffer(cfg.Logger, cfg.Metrics),
		sessionID:       uuid.NewString(),
		sessionEvents:   make(map[string]struct{}),
		firstActivation: true,
	}
}

// SessionID is the random identifier of this process's tracking session.
func (a *Analytics) SessionID() string {
	return a.sessionID
}

// Start bootstraps the engine: loads persisted state, starts every
// configured adaptor (time-boxed, failures dropped), replays buffered
// events, restores the persisted user id, seeds the default user properties
// and counters, emits version-update and first-open events as needed, and
// attaches lifecycle observers.
//
// Start runs at most once; a second call returns ErrAlreadyStarted.
func (a *Analytics) Start(ctx context.Context, opts ...StartOption) error {
	sc := defaultStartConfig()
	for _, opt := range opts {
		opt(&sc)
	}

	a.mu.Lock()
	switch a.phase {
	case phaseCreated:
		a.phase = phaseStarting
	case phaseStopped:
		a.mu.Unlock()
		return ErrStopped
	default:
		a.mu.Unlock()
		return ErrAlreadyStarted
	}
	a.mu.Unlock()

	ctx, span := a.spans.StartStartupSpan(ctx, a.sessionID)
	defer a.spans.EndSpanWithError(span, nil)

	a.state.ensureLoaded(ctx)
	enabled := make([]string, len(a.cfg.EnabledProcessTypes))
	for i, pt := range a.cfg.EnabledProcessTypes {
		enabled[i] = string(pt)
	}
	observability.LogStartup(a.logger, a.sessionID, string(a.cfg.InstallType), string(a.cfg.ProcessType), enabled, len(a.cfg.Adaptors))

	started := make([]adaptor.Adaptor, 0, len(a.cfg.Adaptors))
	for _, ad := range a.cfg.Adaptors {
		if err := a.startAdaptor(ctx, ad); err != nil {
			continue
		}
		started = append(started, ad)
	}
	a.buffer.SetupAdaptors(ctx, started)

	a.restoreUserID(ctx)
	a.configureUserProperties(ctx)
	a.incrementColdLaunchCount(ctx)
	a.sendAppVersionUpdateIfNeeded(ctx)
	a.sendOSVersionUpdateIfNeeded(ctx)

	if a.IsFirstOpen(ctx) {
		a.handleFirstOpen(ctx, sc)
	}

	if !a.cfg.DisableLifecycleEvents && a.cfg.Lifecycle != nil {
		cancel := a.cfg.Lifecycle.Subscribe(func(phase Phase) {
			switch phase {
			case PhaseActive:
				a.appBecameActive(context.Background())
			case PhaseBackground:
				a.appEnteredBackground(context.Background())
			}
		})
		a.mu.Lock()
		a.lifecycleCancel = cancel
		a.mu.Unlock()
	}

	a.mu.Lock()
	a.phase = phaseRunning
	a.mu.Unlock()
	return nil
}

// Stop detaches the lifecycle observer and cancels any armed stuck-UI
// watchdog. Tracking after Stop still reaches started adaptors; Stop exists
// so hosts can tear down cleanly in tests and on shutdown. Idempotent.
func (a *Analytics) Stop() {
	a.mu.Lock()
	if a.phase == phaseStopped {
		a.mu.Unlock()
		return
	}
	a.phase = phaseStopped
	cancel := a.lifecycleCancel
	a.lifecycleCancel = nil
	w := a.watcher
	a.watcher = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if w != nil {
		w.cancel()
	}
}

// startAdaptor runs one adaptor's Start call, racing it against the
// configured timeout. A timed-out start keeps running in its goroutine but
// the adaptor is dropped for this process lifetime either way.
func (a *Analytics) startAdaptor(ctx context.Context, ad adaptor.Adaptor) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.AdaptorStartTimeout)
	defer cancel()

	spanCtx, span := a.spans.StartAdaptorSpan(ctx, ad.Name())
	start := time.Now()

	done := make(chan error, 1)
	go func() {
		done <- ad.Start(spanCtx, adaptor.StartOptions{
			InstallType: a.cfg.InstallType,
			Provider:    a,
		})
	}()

	var err error
	select {
	case startErr := <-done:
		if startErr != nil {
			err = &AdaptorStartError{Adaptor: ad.Name(), Err: startErr}
		}
	case <-ctx.Done():
		err = &AdaptorStartError{Adaptor: ad.Name(), Err: ctx.Err(), TimedOut: true}
	}

	duration := time.Since(start)
	a.metrics.RecordAdaptorStart(ctx, ad.Name(), duration, err)
	a.spans.EndSpanWithError(span, err)
	if err != nil {
		observability.LogAdaptorStartFailed(a.logger, ad.Name(), err)
		return err
	}
	observability.LogAdaptorStarted(a.logger, ad.Name(), float64(duration.Milliseconds()))
	return nil
}

// restoreUserID pushes the persisted user id into the started adaptors.
func (a *Analytics) restoreUserID(ctx context.Context) {
	id, ok := a.state.getString(ctx, fieldUserID)
	if !ok {
		return
	}
	for _, ad := range a.buffer.ActiveAdaptors() {
		if w, ok := ad.(adaptor.UserIDWriter); ok {
			w.SetUserID(id)
		}
	}
}

// configureUserProperties seeds the analytics version and bumps the
// cold-launch counter user property.
func (a *Analytics) configureUserProperties(ctx context.Context) {
	a.setLogged(ctx, model.PropertyAnalyticsVersion, a.cfg.AnalyticsVersion)

	next := a.counterNext(ctx, model.PropertyAppColdLaunchCount)
	a.setLogged(ctx, model.PropertyAppColdLaunchCount, strconv.Itoa(next))
}

// incrementColdLaunchCount bumps the persisted process-launch counter that
// drives IsFirstOpen.
func (a *Analytics) incrementColdLaunchCount(ctx context.Context) {
	n, _ := a.state.getInt(ctx, fieldColdLaunchCount)
	if err := a.state.set(ctx, fieldColdLaunchCount, n+1); err != nil {
		observability.LogStorageWarning(a.logger, "cold launch count", err)
	}
}

// ColdLaunchCount is the number of times Start has run against this
// storage, including the current one.
func (a *Analytics) ColdLaunchCount(ctx context.Context) int {
	n, _ := a.state.getInt(ctx, fieldColdLaunchCount)
	return n
}

// IsFirstOpen reports whether the current cold launch is the first ever for
// this storage. Only meaningful after Start.
func (a *Analytics) IsFirstOpen(ctx context.Context) bool {
	return a.ColdLaunchCount(ctx) == 1
}

// sendAppVersionUpdateIfNeeded persists the current app version and build,
// emitting app_version_update when a previously persisted pair changed.
// A fresh install persists silently.
func (a *Analytics) sendAppVersionUpdateIfNeeded(ctx context.Context) {
	if a.cfg.AppVersion == "" {
		return
	}
	prevVersion, hadVersion := a.state.getString(ctx, fieldAppVersion)
	prevBuild, _ := a.state.getString(ctx, fieldBuild)
	if prevVersion == a.cfg.AppVersion && prevBuild == a.cfg.BuildNumber {
		return
	}

	if err := a.state.set(ctx, fieldAppVersion, a.cfg.AppVersion); err != nil {
		observability.LogStorageWarning(a.logger, "app version", err)
	}
	if err := a.state.set(ctx, fieldBuild, a.cfg.BuildNumber); err != nil {
		observability.LogStorageWarning(a.logger, "build", err)
	}

	if !hadVersion {
		return
	}
	a.Track(ctx, model.EventAppVersionUpdate, model.Params{
		"from_version": prevVersion,
		"to_version":   a.cfg.AppVersion,
		"from_build":   prevBuild,
		"to_build":     a.cfg.BuildNumber,
	})
}

// sendOSVersionUpdateIfNeeded persists the current OS version, emitting
// os_version_update when a previously persisted value changed.
func (a *Analytics) sendOSVersionUpdateIfNeeded(ctx context.Context) {
	if a.cfg.OSVersion == "" {
		return
	}
	prev, hadPrev := a.state.getString(ctx, fieldOSVersion)
	if prev == a.cfg.OSVersion {
		return
	}

	if err := a.state.set(ctx, fieldOSVersion, a.cfg.OSVersion); err != nil {
		observability.LogStorageWarning(a.logger, "os version", err)
	}
	if !hadPrev {
		return
	}
	a.Track(ctx, model.EventOSVersionUpdate, model.Params{
		"from_version": prev,
		"to_version":   a.cfg.OSVersion,
	})
}

// handleFirstOpen computes install-time user properties (skipping any
// already stored), runs the completion hook, and fires the gated first-open
// event for primary app processes.
func (a *Analytics) handleFirstOpen(ctx context.Context, sc startConfig) {
	for _, prop := range a.cfg.InstallProperties {
		if _, ok, _ := a.Get(ctx, prop); ok {
			continue
		}
		value, ok := a.installPropertyValue(prop)
		if !ok {
			continue
		}
		a.setLogged(ctx, prop, value)
	}

	if sc.installPropertiesDone != nil {
		if err := sc.installPropertiesDone(ctx); err != nil {
			observability.LogStorageWarning(a.logger, "install properties completion", err)
		}
	}

	if !sc.trackFirstOpen || a.cfg.ProcessType != model.ProcessTypeApp {
		return
	}
	var params model.Params
	if sc.firstOpenParams != nil {
		params = sc.firstOpenParams()
	}
	a.TrackGated(ctx, model.EventOurFirstOpen, params, model.LogOnlyOncePerLifetime)
}

// installPropertyValue derives the value of a built-in install-time user
// property. App-specific install properties return ok=false and are left to
// the completion hook.
func (a *Analytics) installPropertyValue(prop model.Property) (string, bool) {
	switch prop.Name {
	case model.PropertyInstallDate.Name:
		return time.Now().UTC().Format("2006-01-02"), true
	case model.PropertyInstallVersion.Name:
		return a.cfg.AppVersion, a.cfg.AppVersion != ""
	case model.PropertyInstallOSVersion.Name:
		return a.cfg.OSVersion, a.cfg.OSVersion != ""
	case model.PropertyInstallIsJailbroken.Name:
		if a.cfg.InstallOverrides.IsJailbroken == nil {
			return "", false
		}
		return strconv.FormatBool(*a.cfg.InstallOverrides.IsJailbroken), true
	case model.PropertyInstallUIAppearance.Name:
		if a.cfg.InstallOverrides.UIAppearance == "" {
			return "", false
		}
		return a.cfg.InstallOverrides.UIAppearance, true
	case model.PropertyInstallDynamicType.Name:
		if a.cfg.InstallOverrides.DynamicType == "" {
			return "", false
		}
		return a.cfg.InstallOverrides.DynamicType, true
	}
	return "", false
}

// appBecameActive bumps the app-open counter and emits app_open with the
// last shown view attached. The first activation of the process is flagged
// as a cold launch.
func (a *Analytics) appBecameActive(ctx context.Context) {
	next := a.counterNext(ctx, model.PropertyAppOpenCount)
	a.setLogged(ctx, model.PropertyAppOpenCount, strconv.Itoa(next))

	a.mu.Lock()
	cold := a.firstActivation
	a.firstActivation = false
	lastView := a.lastView
	a.mu.Unlock()

	params := model.Params{"is_cold_launch": cold}
	if lastView != nil {
		model.AddViewParams(*lastView, params, "view_")
	}
	a.Track(ctx, model.EventAppOpen, params)
}

// appEnteredBackground emits app_close with the last shown view attached.
func (a *Analytics) appEnteredBackground(ctx context.Context) {
	params := model.Params{}
	a.mu.Lock()
	lastView := a.lastView
	a.mu.Unlock()
	if lastView != nil {
		model.AddViewParams(*lastView, params, "view_")
	}
	a.Track(ctx, model.EventAppClose, params)
}

// SetUserID persists the user id and pushes it to every started adaptor
// that accepts one. An empty id clears it.
func (a *Analytics) SetUserID(ctx context.Context, id string) error {
	var stored any
	if id != "" {
		stored = id
	}
	err := a.state.set(ctx, fieldUserID, stored)

	for _, ad := range a.buffer.ActiveAdaptors() {
		if w, ok := ad.(adaptor.UserIDWriter); ok {
			w.SetUserID(id)
		}
	}
	return err
}

// UserID reads the user id back from the first started adaptor that can
// report one. ok is false when no adaptor can, or none has an id set.
func (a *Analytics) UserID() (string, bool) {
	for _, ad := range a.buffer.ActiveAdaptors() {
		if r, ok := ad.(adaptor.UserIDReader); ok {
			return r.UserID()
		}
	}
	return "", false
}

// UserPseudoID returns the anonymous per-install identifier of the first
// started adaptor that assigns one.
func (a *Analytics) UserPseudoID() (string, bool) {
	for _, ad := range a.buffer.ActiveAdaptors() {
		if p, ok := ad.(adaptor.PseudoIDProvider); ok {
			return p.UserPseudoID()
		}
	}
	return "", false
}

// LastViewShown returns the most recent view passed to TrackViewShow.
func (a *Analytics) LastViewShown() (model.View, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastView == nil {
		return model.View{}, false
	}
	return *a.lastView, true
}
