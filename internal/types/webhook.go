package types

// WebhookEventType is the subset of provider event types this system
// processes. Everything else is acknowledged and ignored.
type WebhookEventType string

const (
	WebhookEventCheckoutCompleted WebhookEventType = "checkout.session.completed"
	// WebhookEventFreeCheckout is synthesized internally for the 100%-discount
	// activation path, which performs the same idempotent transaction without
	// an external payment event.
	WebhookEventFreeCheckout WebhookEventType = "internal.free_checkout.completed"
)

func (t WebhookEventType) String() string {
	return string(t)
}

// LogLevel mirrors zap levels for configuration.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// RunMode identifies the deployment mode of the process.
type RunMode string

const (
	RunModeLocal RunMode = "local"
	RunModeDev   RunMode = "dev"
	RunModeProd  RunMode = "prod"
)
