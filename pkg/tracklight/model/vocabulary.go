package model

// Built-in event vocabulary. Events marked internal receive the
// automatic-tracking prefix; ui_view_show and ui_button_tap intentionally do
// not, so apps can re-prefix them alongside their own events.
var (
	EventOurFirstOpen = NewInternalEvent("our_first_open")

	EventUIViewShow  = NewEvent("ui_view_show")
	EventUIButtonTap = NewEvent("ui_button_tap")

	EventAppOpen  = NewInternalEvent("app_open")
	EventAppClose = NewInternalEvent("app_close")

	EventError          = NewInternalEvent("error")
	EventErrorCorrected = NewInternalEvent("error_corrected")

	EventAppVersionUpdate = NewInternalEvent("app_version_update")
	EventOSVersionUpdate  = NewInternalEvent("os_version_update")

	EventEngagement        = NewInternalEvent("engagement")
	EventEngagementPrimary = NewInternalEvent("engagement_primary")

	EventOnboardingEnter              = NewInternalEvent("onboarding_enter")
	EventOnboardingExit               = NewInternalEvent("onboarding_exit")
	EventOnboardingQuestionnaireEnter = NewInternalEvent("onboarding_questionnaire_enter")
	EventOnboardingQuestionnaireExit  = NewInternalEvent("onboarding_questionnaire_exit")

	EventAccountSignupEnter = NewInternalEvent("account_signup_enter")
	EventAccountSignupExit  = NewInternalEvent("account_signup_exit")

	EventPaywallEnter       = NewInternalEvent("paywall_show")
	EventPaywallExit        = NewInternalEvent("paywall_exit")
	EventPaywallPurchaseTap = NewInternalEvent("paywall_purchase_tap")

	EventSubscriptionStartIntro       = NewInternalEvent("subscription_start_intro")
	EventSubscriptionStartPaidRegular = NewInternalEvent("subscription_start_paid_regular")
	EventSubscriptionStartNew         = NewInternalEvent("subscription_start_new")
	EventSubscriptionRestore          = NewInternalEvent("subscription_restore")

	EventPurchaseNonConsumableOneTime = NewInternalEvent("purchase_non_consumable_one_time")
	EventPurchaseConsumable           = NewInternalEvent("purchase_consumable")
	EventPurchaseNew                  = NewInternalEvent("purchase_new")

	EventATTPromptNotAllowed = NewInternalEvent("att_prompt_not_allowed")
	EventATTPromptShow       = NewInternalEvent("att_prompt_show")
	EventATTPromptTapAllow   = NewInternalEvent("att_prompt_tap_allow")
	EventATTPromptTapDeny    = NewInternalEvent("att_prompt_tap_deny")
)

// Built-in user property vocabulary.
var (
	PropertyAnalyticsVersion = NewInternalProperty("analytics_version")

	PropertyInstallDate         = NewInternalProperty("install_date")
	PropertyInstallVersion      = NewInternalProperty("install_version")
	PropertyInstallOSVersion    = NewInternalProperty("install_os_version")
	PropertyInstallIsJailbroken = NewInternalProperty("install_is_jailbroken")
	PropertyInstallUIAppearance = NewInternalProperty("install_ui_appearance")
	PropertyInstallDynamicType  = NewInternalProperty("install_dynamic_type")

	PropertyAppColdLaunchCount = NewInternalProperty("app_cold_launch_count")
	PropertyAppOpenCount       = NewInternalProperty("app_open_count")
	PropertyLastViewShow       = NewInternalProperty("last_view_show")

	PropertySubscriptionIntroOffer = NewInternalProperty("subscription_intro_offer")
	PropertySubscription           = NewInternalProperty("subscription")
	PropertySubscription2          = NewInternalProperty("subscription2")
)

// DefaultInstallProperties lists the install-time user properties computed
// on the first ever cold launch.
var DefaultInstallProperties = []Property{
	PropertyInstallDate,
	PropertyInstallVersion,
	PropertyInstallOSVersion,
	PropertyInstallIsJailbroken,
	PropertyInstallUIAppearance,
	PropertyInstallDynamicType,
}
