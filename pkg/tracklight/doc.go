// Package tracklight is an analytics abstraction layer that sits between an
// app and its analytics vendors. Events and user properties are described
// once and fanned out to pluggable adaptors; events tracked before the
// adaptors finish starting are buffered in memory and replayed in order.
//
// The engine persists gating flags, counters, and user properties through a
// small key-value Store, so once-per-lifetime events and cold-launch counts
// survive restarts. Adaptor starts are time-boxed and isolated: an adaptor
// that fails or hangs is dropped for the process lifetime without affecting
// the others.
//
// Construct an engine with New, then call Start:
//
//	a := tracklight.New(tracklight.Config{
//		AnalyticsVersion: "1",
//		Adaptors:         []adaptor.Adaptor{adaptor.NewConsoleAdaptor(nil)},
//		Storage:          store,
//	})
//	if err := a.Start(ctx); err != nil {
//		return err
//	}
//	a.TrackViewShow(ctx, model.NewView("home", "screen"))
package tracklight
