package tracklight

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/uxsignals/tracklight/pkg/tracklight/model"
)

// TrackViewShow tracks a primary view being shown and remembers it as the
// last view for later context attachment. A pending stuck-UI watchdog from a
// previous guarded show is resolved first.
func (a *Analytics) TrackViewShow(ctx context.Context, view model.View) {
	a.trackViewShow(ctx, view, 0)
}

// TrackViewShowGuarded is TrackViewShow with a stuck-UI watchdog: if no
// other view show arrives within stuckTimeout, an error event fires with
// the view's parameters, and a show arriving within the correction window
// after that fires a matching error-corrected event.
func (a *Analytics) TrackViewShowGuarded(ctx context.Context, view model.View, stuckTimeout time.Duration) {
	a.trackViewShow(ctx, view, stuckTimeout)
}

func (a *Analytics) trackViewShow(ctx context.Context, view model.View, stuckTimeout time.Duration) {
	params := model.Params{}
	model.AddViewParams(view, params, "")

	var next *stuckWatcher
	if stuckTimeout > 0 {
		next = newStuckWatcher(a, params, stuckTimeout)
	}

	a.mu.Lock()
	prev := a.watcher
	a.watcher = next
	a.lastView = &view
	a.mu.Unlock()

	if prev != nil {
		prev.cancel()
		prev.correctIfNeeded(ctx)
	}

	a.setLogged(ctx, model.PropertyLastViewShow, formatLastViewShow(view))
	a.Track(ctx, model.EventUIViewShow, params)
}

// TrackSecondaryViewShow tracks a view shown inside or over a main view
// (a dialog, a sheet), attributing it to the main view's parameters.
func (a *Analytics) TrackSecondaryViewShow(ctx context.Context, view model.SecondaryView) {
	params := model.Params{"secondary_view_name": view.Name}
	if view.Type != "" {
		params["secondary_view_type"] = view.Type
	}
	model.AddViewParams(view.Main, params, "")
	a.Track(ctx, model.EventUIViewShow, params)
}

// tapOptions carries the optional button-tap metadata.
type tapOptions struct {
	detail          *string
	isDefaultDetail *bool
	index           *int
}

// TapOption adds optional metadata to a button tap.
type TapOption func(*tapOptions)

// WithTapDetail attaches a detail string (the tapped row's value, a toggle
// state) to the tap.
func WithTapDetail(detail string) TapOption {
	return func(o *tapOptions) {
		o.detail = &detail
	}
}

// WithTapDefaultDetail marks whether the detail is the control's default.
func WithTapDefaultDetail(isDefault bool) TapOption {
	return func(o *tapOptions) {
		o.isDefaultDetail = &isDefault
	}
}

// WithTapIndex attaches the zero-based position of the tapped control; it is
// reported one-based as the order parameter.
func WithTapIndex(index int) TapOption {
	return func(o *tapOptions) {
		o.index = &index
	}
}

// TrackButtonTap tracks a tap on a control inside a primary view.
func (a *Analytics) TrackButtonTap(ctx context.Context, name string, view model.View, opts ...TapOption) {
	params := buttonTapParams(name, opts)
	model.AddViewParams(view, params, "view_")
	a.Track(ctx, model.EventUIButtonTap, params)
}

// TrackSecondaryButtonTap tracks a tap on a control inside a secondary view,
// attributing it to the secondary view's main view.
func (a *Analytics) TrackSecondaryButtonTap(ctx context.Context, name string, view model.SecondaryView, opts ...TapOption) {
	params := buttonTapParams(name, opts)
	params["secondary_view_name"] = view.Name
	if view.Type != "" {
		params["secondary_view_type"] = view.Type
	}
	model.AddViewParams(view.Main, params, "view_")
	a.Track(ctx, model.EventUIButtonTap, params)
}

func buttonTapParams(name string, opts []TapOption) model.Params {
	var o tapOptions
	for _, opt := range opts {
		opt(&o)
	}

	params := model.Params{"name": name}
	if o.index != nil {
		params["order"] = *o.index + 1
	}
	if o.detail != nil {
		params["detail"] = *o.detail
	}
	if o.isDefaultDetail != nil {
		params["is_default_detail"] = *o.isDefaultDetail
	}
	return params
}

// TrackOnboardingEnter tracks the user entering onboarding.
func (a *Analytics) TrackOnboardingEnter(ctx context.Context, extra model.Params) {
	a.Track(ctx, model.EventOnboardingEnter, extra)
}

// TrackOnboardingExit tracks the user leaving onboarding.
func (a *Analytics) TrackOnboardingExit(ctx context.Context, extra model.Params) {
	a.Track(ctx, model.EventOnboardingExit, extra)
}

// TrackOnboardingQuestionnaireEnter tracks the questionnaire portion of
// onboarding beginning.
func (a *Analytics) TrackOnboardingQuestionnaireEnter(ctx context.Context, extra model.Params) {
	a.Track(ctx, model.EventOnboardingQuestionnaireEnter, extra)
}

// TrackOnboardingQuestionnaireExit tracks the questionnaire portion of
// onboarding ending.
func (a *Analytics) TrackOnboardingQuestionnaireExit(ctx context.Context, extra model.Params) {
	a.Track(ctx, model.EventOnboardingQuestionnaireExit, extra)
}

// TrackAccountSignupEnter tracks the signup flow starting. method may be
// empty when not yet known.
func (a *Analytics) TrackAccountSignupEnter(ctx context.Context, method model.SignupMethod, extra model.Params) {
	params := extra.Clone()
	if method != "" {
		params["method"] = string(method)
	}
	a.Track(ctx, model.EventAccountSignupEnter, params)
}

// TrackAccountSignupExit tracks the signup flow completing with the method
// the user chose.
func (a *Analytics) TrackAccountSignupExit(ctx context.Context, method model.SignupMethod, extra model.Params) {
	params := extra.Clone()
	params["method"] = string(method)
	a.Track(ctx, model.EventAccountSignupExit, params)
}

// TrackPaywallEnter tracks a paywall being shown, followed by the matching
// view show so view context stays consistent.
func (a *Analytics) TrackPaywallEnter(ctx context.Context, paywall model.Paywall) {
	a.Track(ctx, model.EventPaywallEnter, paywallParams(paywall))
	a.TrackViewShow(ctx, model.NewView("paywall", paywall.Placement))
}

// TrackPaywallExit tracks a paywall being dismissed.
func (a *Analytics) TrackPaywallExit(ctx context.Context, paywall model.Paywall, reason model.PaywallExitReason) {
	params := paywallParams(paywall)
	params["reason"] = string(reason)
	a.Track(ctx, model.EventPaywallExit, params)
}

// TrackPaywallPurchaseTap tracks the purchase button on a paywall being
// tapped, followed by the matching button tap.
func (a *Analytics) TrackPaywallPurchaseTap(ctx context.Context, buttonName, productID string, paywall model.Paywall) {
	params := model.Params{
		"button_name": buttonName,
		"product_id":  productID,
		"placement":   paywall.Placement,
	}
	if paywall.ID != "" {
		params["paywall_id"] = paywall.ID
	}
	if paywall.Name != "" {
		params["paywall_name"] = paywall.Name
	}
	a.Track(ctx, model.EventPaywallPurchaseTap, params)
	a.TrackButtonTap(ctx, buttonName, model.NewView("paywall", paywall.Placement))
}

func paywallParams(paywall model.Paywall) model.Params {
	params := model.Params{"placement": paywall.Placement}
	if paywall.ID != "" {
		params["id"] = paywall.ID
	}
	if paywall.Name != "" {
		params["name"] = paywall.Name
	}
	return params
}

// TrackSubscriptionStartIntro tracks an introductory-offer subscription
// start (trial or paid intro), also emitting the aggregate start event.
func (a *Analytics) TrackSubscriptionStartIntro(ctx context.Context, sub model.SubscriptionStart) {
	params := model.Params{}
	model.AddSubscriptionParams(params, sub)
	a.Track(ctx, model.EventSubscriptionStartIntro, params)
	a.TrackSubscriptionStartNew(ctx, sub)
}

// TrackSubscriptionStartPaidRegular tracks a regular paid subscription
// start, also emitting the aggregate start event.
func (a *Analytics) TrackSubscriptionStartPaidRegular(ctx context.Context, sub model.SubscriptionStart) {
	params := model.Params{}
	model.AddSubscriptionParams(params, sub)
	a.Track(ctx, model.EventSubscriptionStartPaidRegular, params)
	a.TrackSubscriptionStartNew(ctx, sub)
}

// TrackSubscriptionStartNew tracks the aggregate new-subscription event.
func (a *Analytics) TrackSubscriptionStartNew(ctx context.Context, sub model.SubscriptionStart) {
	params := model.Params{}
	model.AddSubscriptionParams(params, sub)
	a.Track(ctx, model.EventSubscriptionStartNew, params)
}

// TrackSubscriptionRestore tracks an existing subscription being restored.
func (a *Analytics) TrackSubscriptionRestore(ctx context.Context, sub model.SubscriptionStart) {
	params := model.Params{}
	model.AddSubscriptionParams(params, sub)
	a.Track(ctx, model.EventSubscriptionRestore, params)
}

// TrackEngagement tracks a named engagement with the last shown view
// attached as context.
func (a *Analytics) TrackEngagement(ctx context.Context, name string) {
	a.Track(ctx, model.EventEngagement, a.engagementParams(name))
}

// TrackEngagementPrimary tracks the app's primary engagement, emitting both
// the generic engagement event and the dedicated primary one.
func (a *Analytics) TrackEngagementPrimary(ctx context.Context, name string) {
	params := a.engagementParams(name)
	a.Track(ctx, model.EventEngagement, params)
	a.Track(ctx, model.EventEngagementPrimary, params)
}

func (a *Analytics) engagementParams(name string) model.Params {
	params := model.Params{"name": name}
	if view, ok := a.LastViewShown(); ok {
		model.AddViewParams(view, params, "view_")
	}
	return params
}

// TrackDebugEvent tracks a diagnostic breadcrumb as an app-defined debug
// event.
func (a *Analytics) TrackDebugEvent(ctx context.Context, reason string, extra model.Params) {
	params := extra.Clone()
	params["reason"] = reason
	a.Track(ctx, model.NewEvent("debug"), params)
}

// TrackErrorEvent tracks an error with a stable symbolic reason. err is
// optional; when present its type, code (for CodedError values), and
// message are attached.
func (a *Analytics) TrackErrorEvent(ctx context.Context, reason string, err error, extra model.Params) {
	a.Track(ctx, model.EventError, errorParams(reason, err, extra))
}

// TrackErrorCorrectedEvent tracks a previously reported error resolving
// itself, mirroring the error event's parameters.
func (a *Analytics) TrackErrorCorrectedEvent(ctx context.Context, reason string, err error, extra model.Params) {
	a.Track(ctx, model.EventErrorCorrected, errorParams(reason, err, extra))
}

func errorParams(reason string, err error, extra model.Params) model.Params {
	params := extra.Clone()
	params["reason"] = reason
	if err == nil {
		return params
	}
	params["error_domain"] = fmt.Sprintf("%T", err)
	params["error_description"] = err.Error()
	var coded CodedError
	if errors.As(err, &coded) {
		params["error_code"] = coded.Code()
	}
	return params
}

// formatLastViewShow renders a view as the compact semicolon-separated
// string stored in the last-view user property. Absent fields stay empty.
func formatLastViewShow(view model.View) string {
	fields := []string{view.Name, view.Type, "", "", "", ""}
	if f := view.Funnel; f != nil {
		fields[2] = f.Name
		if f.HasStep {
			fields[3] = strconv.Itoa(f.Step)
		}
		if f.Optional != nil {
			fields[4] = strconv.FormatBool(*f.Optional)
		}
		if f.Final != nil {
			fields[5] = strconv.FormatBool(*f.Final)
		}
	}
	return strings.Join(fields, ";")
}
