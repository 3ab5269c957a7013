package dto

import (
	"time"

	"github.com/lettercounsel/lettercounsel/internal/domain/subscription"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/shopspring/decimal"
)

type CreateCheckoutRequest struct {
	PlanType   types.PlanType `json:"plan_type" binding:"required"`
	CouponCode string         `json:"coupon_code,omitempty"`
}

func (r *CreateCheckoutRequest) Validate() error {
	if _, ok := types.PlanCatalog[r.PlanType]; !ok {
		return ierr.NewError("unknown plan").
			WithHintf("Plan %q is not purchasable", r.PlanType).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type SubscriptionResponse struct {
	ID                 string                   `json:"id"`
	PlanType           types.PlanType           `json:"plan_type"`
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status"`
	LettersRemaining   *int                     `json:"letters_remaining"`
	IsUnlimited        bool                     `json:"is_unlimited"`
	CurrentPeriodStart time.Time                `json:"current_period_start"`
	CurrentPeriodEnd   time.Time                `json:"current_period_end"`
	Price              decimal.Decimal          `json:"price"`
}

func NewSubscriptionResponse(sub *subscription.Subscription) *SubscriptionResponse {
	if sub == nil {
		return nil
	}
	return &SubscriptionResponse{
		ID:                 sub.ID,
		PlanType:           sub.PlanType,
		SubscriptionStatus: sub.SubscriptionStatus,
		LettersRemaining:   sub.LettersRemaining,
		IsUnlimited:        sub.IsUnlimited,
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		Price:              sub.Price,
	}
}

type SubscriptionStateResponse struct {
	Subscription       *SubscriptionResponse `json:"subscription,omitempty"`
	FreeTrialAvailable bool                  `json:"free_trial_available"`
	Eligible           bool                  `json:"eligible"`
}

type ListPlansResponse struct {
	Items []types.Plan `json:"items"`
}

type CheckoutResponse struct {
	URL             string                `json:"url,omitempty"`
	SessionID       string                `json:"session_id,omitempty"`
	Subscription    *SubscriptionResponse `json:"subscription,omitempty"`
	Completed       bool                  `json:"completed"`
	FinalPrice      decimal.Decimal       `json:"final_price"`
	DiscountApplied bool                  `json:"discount_applied"`
}
