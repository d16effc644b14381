package model

// SignupMethod identifies how an account signup was performed.
// Apps may pass any string; these cover the common providers.
type SignupMethod string

// Common signup methods.
const (
	SignupEmail    SignupMethod = "email"
	SignupApple    SignupMethod = "apple"
	SignupGoogle   SignupMethod = "google"
	SignupFacebook SignupMethod = "facebook"
)

// PaywallExitReason describes why a paywall was dismissed.
type PaywallExitReason string

// Paywall exit reasons.
const (
	PaywallExitClosed              PaywallExitReason = "closed paywall"
	PaywallExitCancelledPayment    PaywallExitReason = "cancelled payment confirmation"
	PaywallExitNewSubscription     PaywallExitReason = "new subscription"
	PaywallExitRestoredSubscripton PaywallExitReason = "restored subscription"
)

// SubscriptionType classifies how a subscription was started.
type SubscriptionType string

// Subscription types.
const (
	SubscriptionTrial               SubscriptionType = "trial"
	SubscriptionPaidIntroPayAsYouGo SubscriptionType = "paid intro pay as you go"
	SubscriptionPaidIntroPayUpFront SubscriptionType = "paid intro pay up front"
	SubscriptionPaidRegular         SubscriptionType = "paid regular"
)

// Paywall carries the analytics identity of a paywall placement.
// ID and Name are optional.
type Paywall struct {
	Placement string
	ID        string
	Name      string
}

// SubscriptionStart describes a subscription purchase or restore for
// analytics purposes.
type SubscriptionStart struct {
	Type      SubscriptionType
	Paywall   Paywall
	ProductID string
	Price     float64
	Currency  string
}

// AddSubscriptionParams attaches the standard subscription parameter set:
// product_id, type, placement, value, price, currency, quantity=1, and the
// optional paywall_id/paywall_name.
func AddSubscriptionParams(params Params, sub SubscriptionStart) {
	params["product_id"] = sub.ProductID
	params["type"] = string(sub.Type)
	params["placement"] = sub.Paywall.Placement
	params["value"] = sub.Price
	params["price"] = sub.Price
	params["currency"] = sub.Currency
	params["quantity"] = 1
	if sub.Paywall.ID != "" {
		params["paywall_id"] = sub.Paywall.ID
	}
	if sub.Paywall.Name != "" {
		params["paywall_name"] = sub.Paywall.Name
	}
}
