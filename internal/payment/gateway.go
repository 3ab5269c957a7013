package payment

import (
	"context"

	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/shopspring/decimal"
)

// CheckoutInput describes one plan purchase to hand to the payment provider.
type CheckoutInput struct {
	UserID      string
	UserEmail   string
	PlanType    types.PlanType
	DisplayName string
	// Price is the final amount after any coupon discount.
	Price      decimal.Decimal
	CouponCode string
}

// CheckoutSession is the provider-side session the subscriber is redirected to.
type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// WebhookEvent is the provider event reduced to what the payment completion
// transaction needs.
type WebhookEvent struct {
	ID        string
	Type      types.WebhookEventType
	SessionID string
	// Handled is false for event types this system ignores.
	Handled bool
}

// Gateway abstracts the payment provider for checkout and webhook
// verification.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, input CheckoutInput) (*CheckoutSession, error)
	// VerifyWebhook checks the event signature and reduces the payload.
	// Signature failures return ErrPermissionDenied.
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
