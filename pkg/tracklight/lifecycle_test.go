package tracklight_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/uxsignals/tracklight/pkg/tracklight"
	"github.com/uxsignals/tracklight/pkg/tracklight/adaptor"
	"github.com/uxsignals/tracklight/pkg/tracklight/model"
)

func TestNotifier_SubscribeAndCancel(t *testing.T) {
	n := tracklight.NewNotifier()

	var got []tracklight.Phase
	cancel := n.Subscribe(func(p tracklight.Phase) {
		got = append(got, p)
	})

	n.Emit(tracklight.PhaseActive)
	n.Emit(tracklight.PhaseBackground)
	cancel()
	n.Emit(tracklight.PhaseActive)

	assert.Equal(t, []tracklight.Phase{tracklight.PhaseActive, tracklight.PhaseBackground}, got)

	// Cancelling twice is a no-op.
	assert.NotPanics(t, cancel)
}

func TestLifecycle_AppOpenAndClose(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	notifier := tracklight.NewNotifier()
	rec := adaptor.NewRecorderAdaptor("rec")
	a := startEngine(t, tracklight.Config{
		Adaptors:  []adaptor.Adaptor{rec},
		Lifecycle: notifier,
	})
	rec.Reset()

	a.TrackViewShow(context.Background(), model.NewView("home", "screen"))
	rec.Reset()

	notifier.Emit(tracklight.PhaseActive)
	notifier.Emit(tracklight.PhaseBackground)

	names := rec.EventNames()
	assert.Equal(t, []string{"app_open", "app_close"}, names)

	events := rec.Events()
	assert.Equal(t, true, events[0].Params["is_cold_launch"])
	assert.Equal(t, "home", events[0].Params["view_name"])
	assert.Equal(t, "home", events[1].Params["view_name"])

	count, ok := rec.LastPropertyValue("app_open_count")
	require.True(t, ok)
	assert.Equal(t, "1", count)
}

func TestLifecycle_SecondActivationIsWarm(t *testing.T) {
	notifier := tracklight.NewNotifier()
	rec := adaptor.NewRecorderAdaptor("rec")
	startEngine(t, tracklight.Config{
		Adaptors:  []adaptor.Adaptor{rec},
		Lifecycle: notifier,
	})
	rec.Reset()

	notifier.Emit(tracklight.PhaseActive)
	notifier.Emit(tracklight.PhaseBackground)
	notifier.Emit(tracklight.PhaseActive)

	var opens []adaptor.TrackedEvent
	for _, e := range rec.Events() {
		if e.Event.Name == "app_open" {
			opens = append(opens, e)
		}
	}
	require.Len(t, opens, 2)
	assert.Equal(t, true, opens[0].Params["is_cold_launch"])
	assert.Equal(t, false, opens[1].Params["is_cold_launch"])

	count, ok := rec.LastPropertyValue("app_open_count")
	require.True(t, ok)
	assert.Equal(t, "2", count)
}

func TestLifecycle_DisabledEmitsNothing(t *testing.T) {
	notifier := tracklight.NewNotifier()
	rec := adaptor.NewRecorderAdaptor("rec")
	startEngine(t, tracklight.Config{
		Adaptors:               []adaptor.Adaptor{rec},
		Lifecycle:              notifier,
		DisableLifecycleEvents: true,
	})
	rec.Reset()

	notifier.Emit(tracklight.PhaseActive)
	notifier.Emit(tracklight.PhaseBackground)

	assert.Empty(t, rec.EventNames())
}

func TestLifecycle_StopDetaches(t *testing.T) {
	notifier := tracklight.NewNotifier()
	rec := adaptor.NewRecorderAdaptor("rec")
	a := startEngine(t, tracklight.Config{
		Adaptors:  []adaptor.Adaptor{rec},
		Lifecycle: notifier,
	})
	a.Stop()
	rec.Reset()

	notifier.Emit(tracklight.PhaseActive)

	assert.Empty(t, rec.EventNames())
}
