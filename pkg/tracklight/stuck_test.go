package tracklight_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/uxsignals/tracklight/pkg/tracklight"
	"github.com/uxsignals/tracklight/pkg/tracklight/adaptor"
	"github.com/uxsignals/tracklight/pkg/tracklight/model"
)

func findEvent(rec *adaptor.RecorderAdaptor, name string) (adaptor.TrackedEvent, bool) {
	for _, e := range rec.Events() {
		if e.Event.Name == name {
			return e, true
		}
	}
	return adaptor.TrackedEvent{}, false
}

func TestStuckUI_ExpiryEmitsError(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	a, rec := recorderEngine(t)
	a.TrackViewShowGuarded(context.Background(), model.NewView("loading", "screen"), 30*time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := findEvent(rec, "error")
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	event, _ := findEvent(rec, "error")
	assert.Equal(t, "stuck on ui_view_show", event.Params["reason"])
	assert.Equal(t, "loading", event.Params["view_name"])
	assert.Equal(t, "screen", event.Params["view_type"])

	duration, ok := event.Params["duration"].(float64)
	require.True(t, ok)
	assert.InDelta(t, 0.03, duration, 0.001)
}

func TestStuckUI_NextShowInTimeCancels(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	a, rec := recorderEngine(t)

	a.TrackViewShowGuarded(ctx, model.NewView("loading", "screen"), 200*time.Millisecond)
	a.TrackViewShow(ctx, model.NewView("home", "screen"))

	time.Sleep(300 * time.Millisecond)

	_, found := findEvent(rec, "error")
	assert.False(t, found, "watchdog should be cancelled by the next view show")
}

func TestStuckUI_CorrectionWithinWindow(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	a, rec := recorderEngine(t)

	a.TrackViewShowGuarded(ctx, model.NewView("loading", "screen"), 20*time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := findEvent(rec, "error")
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	// The follow-up show arrives within the correction window.
	a.TrackViewShow(ctx, model.NewView("home", "screen"))

	corrected, found := findEvent(rec, "error_corrected")
	require.True(t, found)
	assert.Equal(t, "stuck on ui_view_show", corrected.Params["reason"])
	assert.Equal(t, "loading", corrected.Params["view_name"])

	duration, ok := corrected.Params["duration"].(float64)
	require.True(t, ok)
	// Total stuck time: the delay plus however long the correction took.
	assert.GreaterOrEqual(t, duration, 0.02)
}

func TestStuckUI_ShowAfterWindowAbandonsCorrection(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	rec := adaptor.NewRecorderAdaptor("rec")
	a := startEngine(t, tracklight.Config{
		Adaptors:              []adaptor.Adaptor{rec},
		StuckCorrectionWindow: 50 * time.Millisecond,
	})
	rec.Reset()

	a.TrackViewShowGuarded(ctx, model.NewView("loading", "screen"), 20*time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := findEvent(rec, "error")
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	// The follow-up show arrives after the correction window closed.
	time.Sleep(100 * time.Millisecond)
	a.TrackViewShow(ctx, model.NewView("home", "screen"))

	_, found := findEvent(rec, "error_corrected")
	assert.False(t, found, "shows after the correction window should not correct")
}

func TestStuckUI_ReplacedWatchdogDoesNotFire(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	a, rec := recorderEngine(t)

	a.TrackViewShowGuarded(ctx, model.NewView("first", "screen"), 100*time.Millisecond)
	a.TrackViewShowGuarded(ctx, model.NewView("second", "screen"), 30*time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := findEvent(rec, "error")
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	event, _ := findEvent(rec, "error")
	assert.Equal(t, "second", event.Params["view_name"])
}

func TestStuckUI_StopCancelsWatchdog(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	a, rec := recorderEngine(t)

	a.TrackViewShowGuarded(context.Background(), model.NewView("loading", "screen"), 50*time.Millisecond)
	a.Stop()

	time.Sleep(120 * time.Millisecond)

	_, found := findEvent(rec, "error")
	assert.False(t, found)
}
