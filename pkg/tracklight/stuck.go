package tracklight

import (
	"context"
	"sync"
	"time"

	"github.com/uxsignals/tracklight/pkg/tracklight/model"
	"github.com/uxsignals/tracklight/pkg/tracklight/observability"
)

// stuckReason tags stuck-UI error and correction events.
const stuckReason = "stuck on ui_view_show"

// stuckWatcher detects a view shown too long without a follow-up. It arms a
// one-shot timer on construction; if the timer fires first, an error event
// with the original view parameters goes out and the watcher waits for a
// correction. A new view show within the correction window emits an
// error-corrected event; later shows abandon the stuck state silently.
//
// Only one watcher is active at a time; the orchestrator resolves the
// previous one before arming a new one.
type stuckWatcher struct {
	analytics  *Analytics
	viewParams model.Params
	delay      time.Duration
	window     time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	expiredAt time.Time
	cancelled bool
}

// newStuckWatcher arms a watcher for the given view parameters.
func newStuckWatcher(a *Analytics, viewParams model.Params, delay time.Duration) *stuckWatcher {
	w := &stuckWatcher{
		analytics:  a,
		viewParams: viewParams.Clone(),
		delay:      delay,
		window:     a.cfg.StuckCorrectionWindow,
	}
	w.timer = time.AfterFunc(delay, w.expire)
	return w
}

// expire runs on the timer goroutine when no view show arrived in time.
func (w *stuckWatcher) expire() {
	w.mu.Lock()
	if w.cancelled {
		w.mu.Unlock()
		return
	}
	w.expiredAt = time.Now()
	w.mu.Unlock()

	params := w.prefixedViewParams()
	params["duration"] = w.delay.Seconds()

	viewName, _ := w.viewParams["name"].(string)
	observability.LogWatchdogExpired(w.analytics.logger, viewName, w.delay.Seconds())

	w.analytics.TrackErrorEvent(context.Background(), stuckReason, nil, params)
}

// correctIfNeeded emits the correction event when a new view show arrives
// within the correction window of a prior expiry. Outside the window the
// stuck state is abandoned without a correction.
func (w *stuckWatcher) correctIfNeeded(ctx context.Context) {
	w.mu.Lock()
	expiredAt := w.expiredAt
	w.mu.Unlock()

	if expiredAt.IsZero() {
		return
	}
	elapsed := time.Since(expiredAt)
	if elapsed > w.window {
		return
	}

	params := w.prefixedViewParams()
	params["duration"] = w.delay.Seconds() + elapsed.Seconds()

	w.analytics.TrackErrorCorrectedEvent(ctx, stuckReason, nil, params)
}

// cancel stops the timer. Idempotent and safe after the timer already fired.
func (w *stuckWatcher) cancel() {
	w.mu.Lock()
	w.cancelled = true
	w.mu.Unlock()
	w.timer.Stop()
}

// prefixedViewParams re-keys the original view parameters under view_.
func (w *stuckWatcher) prefixedViewParams() model.Params {
	params := make(model.Params, len(w.viewParams)+1)
	for k, v := range w.viewParams {
		params["view_"+k] = v
	}
	return params
}
