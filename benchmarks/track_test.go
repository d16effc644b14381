package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/uxsignals/tracklight/pkg/tracklight"
	"github.com/uxsignals/tracklight/pkg/tracklight/adaptor"
	"github.com/uxsignals/tracklight/pkg/tracklight/model"
)

// noopAdaptor accepts everything and does nothing, isolating core dispatch
// cost from destination cost.
type noopAdaptor struct{}

func (noopAdaptor) Name() string                                        { return "noop" }
func (noopAdaptor) Start(context.Context, adaptor.StartOptions) error   { return nil }
func (noopAdaptor) Track(model.TrimmedEvent, model.Params) error        { return nil }
func (noopAdaptor) Set(model.TrimmedProperty, string) error             { return nil }
func (noopAdaptor) Unset(model.TrimmedProperty) error                   { return nil }
func (noopAdaptor) TrimEvent(e model.Event) model.TrimmedEvent          { return model.TrimmedEvent{Name: e.Name} }
func (noopAdaptor) TrimProperty(p model.Property) model.TrimmedProperty { return model.TrimmedProperty{Name: p.Name} }

func startedEngine(b *testing.B) *tracklight.Analytics {
	b.Helper()
	a := tracklight.New(tracklight.Config{
		AnalyticsVersion:       "1",
		Adaptors:               []adaptor.Adaptor{noopAdaptor{}},
		DisableLifecycleEvents: true,
	})
	if err := a.Start(context.Background()); err != nil {
		b.Fatal(err)
	}
	b.Cleanup(a.Stop)
	return a
}

// BenchmarkTrack measures event dispatch with no params.
func BenchmarkTrack(b *testing.B) {
	a := startedEngine(b)
	ctx := context.Background()
	event := model.NewEvent("checkout")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Track(ctx, event, nil)
	}
}

// BenchmarkTrack_WithParams measures event dispatch with a typical param set.
func BenchmarkTrack_WithParams(b *testing.B) {
	a := startedEngine(b)
	ctx := context.Background()
	event := model.NewEvent("checkout")
	params := model.Params{
		"product_id": "sku-123",
		"quantity":   2,
		"discounted": true,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Track(ctx, event, params)
	}
}

// BenchmarkTrackGated_Session measures session-gated dispatch where the gate
// is already closed, the steady-state path for gated events.
func BenchmarkTrackGated_Session(b *testing.B) {
	a := startedEngine(b)
	ctx := context.Background()
	event := model.NewEvent("feature_discovered")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.TrackGated(ctx, event, nil, model.LogOnlyOncePerAppSession)
	}
}

// BenchmarkTrackViewShow measures the view show convenience path, which
// derives params and records the last view.
func BenchmarkTrackViewShow(b *testing.B) {
	a := startedEngine(b)
	ctx := context.Background()
	view := model.NewView("home", "screen")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.TrackViewShow(ctx, view)
	}
}

// BenchmarkTrack_Buffered measures queueing on an engine that has not
// started, the pre-start buffering path.
func BenchmarkTrack_Buffered(b *testing.B) {
	a := tracklight.New(tracklight.Config{
		AnalyticsVersion:       "1",
		DisableLifecycleEvents: true,
	})
	ctx := context.Background()
	event := model.NewEvent("early")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Track(ctx, event, nil)
	}
}

// BenchmarkSet measures user property persistence plus adaptor fan-out.
func BenchmarkSet(b *testing.B) {
	a := startedEngine(b)
	ctx := context.Background()
	property := model.NewProperty("plan")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Set(ctx, property, fmt.Sprintf("tier-%d", i%4))
	}
}
