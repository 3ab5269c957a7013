package subscription

import (
	"context"
	"time"

	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/shopspring/decimal"
)

// Subscription is the allowance account for a subscriber. LettersRemaining
// of nil means unlimited; the balance is mutated exclusively through the
// repository's atomic deduct/refund/activate operations.
type Subscription struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	PlanType           types.PlanType           `json:"plan_type"`
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status"`

	LettersRemaining *int `json:"letters_remaining"`
	IsUnlimited      bool `json:"is_unlimited"`

	CurrentPeriodStart time.Time `json:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`

	// StripeSessionID links a pending row to its checkout session so a
	// retried webhook can find it.
	StripeSessionID *string         `json:"stripe_session_id,omitempty"`
	CouponCode      *string         `json:"coupon_code,omitempty"`
	Price           decimal.Decimal `json:"price"`

	types.BaseModel
}

// NewPending returns a pending subscription for a checkout in progress.
func NewPending(ctx context.Context, userID string, planType types.PlanType, sessionID string, price decimal.Decimal) *Subscription {
	return &Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUIDPrefixSubscription),
		UserID:             userID,
		PlanType:           planType,
		SubscriptionStatus: types.SubscriptionStatusPending,
		StripeSessionID:    &sessionID,
		Price:              price,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
}

// HasAllowance reports whether the subscription can cover one more letter
// without consulting the database. The authoritative check is the atomic
// deduction; this is only used for the read-only eligibility path.
func (s *Subscription) HasAllowance() bool {
	if s.IsUnlimited || s.LettersRemaining == nil {
		return true
	}
	return *s.LettersRemaining > 0
}
