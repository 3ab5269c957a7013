package service

import (
	"context"
	"sort"

	"github.com/lettercounsel/lettercounsel/internal/cache"
	domainSub "github.com/lettercounsel/lettercounsel/internal/domain/subscription"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/idempotency"
	"github.com/lettercounsel/lettercounsel/internal/payment"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/lettercounsel/lettercounsel/internal/validator"
	"github.com/shopspring/decimal"
)

const planCatalogCacheKey = "plans:catalog"

// SubscriptionState is what the subscriber sees about their allowance.
type SubscriptionState struct {
	Subscription       *domainSub.Subscription `json:"subscription,omitempty"`
	FreeTrialAvailable bool                    `json:"free_trial_available"`
	Eligible           bool                    `json:"eligible"`
}

// SubscriptionService covers the purchase side: plan catalog, checkout and
// the subscriber's current state.
type SubscriptionService interface {
	GetPlans(ctx context.Context) ([]types.Plan, error)
	GetCurrentState(ctx context.Context) (*SubscriptionState, error)
	// CreateCheckout starts a paid checkout and returns the redirect URL.
	// A 100 percent discount coupon short-circuits to immediate activation.
	CreateCheckout(ctx context.Context, req CreateCheckoutRequest) (*CheckoutResult, error)
}

type CreateCheckoutRequest struct {
	PlanType   types.PlanType `json:"plan_type" validate:"required"`
	CouponCode string         `json:"coupon_code,omitempty"`
}

type CheckoutResult struct {
	// URL is empty when the checkout completed immediately (full discount).
	URL             string                  `json:"url,omitempty"`
	SessionID       string                  `json:"session_id,omitempty"`
	Subscription    *domainSub.Subscription `json:"subscription,omitempty"`
	Completed       bool                    `json:"completed"`
	FinalPrice      decimal.Decimal         `json:"final_price"`
	DiscountApplied bool                    `json:"discount_applied"`
}

type subscriptionService struct {
	ServiceParams
	allowance AllowanceService
	payments  PaymentService
}

func NewSubscriptionService(params ServiceParams, allowance AllowanceService, payments PaymentService) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
		allowance:     allowance,
		payments:      payments,
	}
}

// GetPlans returns the purchasable plan catalog, cheapest first.
func (s *subscriptionService) GetPlans(ctx context.Context) ([]types.Plan, error) {
	if cached, ok := s.Cache.Get(ctx, planCatalogCacheKey); ok {
		if plans, ok := cache.UnmarshalCacheValue[[]types.Plan](cached); ok {
			return *plans, nil
		}
	}

	plans := make([]types.Plan, 0, len(types.PlanCatalog))
	for _, plan := range types.PlanCatalog {
		plans = append(plans, plan)
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].Price.LessThan(plans[j].Price)
	})

	s.Cache.Set(ctx, planCatalogCacheKey, &plans, cache.ExpiryPlans)
	return plans, nil
}

func (s *subscriptionService) GetCurrentState(ctx context.Context) (*SubscriptionState, error) {
	userID := types.GetUserID(ctx)

	state := &SubscriptionState{}

	// Eligibility goes first: it applies any pending billing period rollover,
	// so the subscription read below sees the fresh balance.
	eligibility, err := s.allowance.CheckEligibility(ctx, userID)
	if err != nil {
		return nil, err
	}
	state.Eligible = eligibility.Eligible
	state.FreeTrialAvailable = eligibility.Source == AllowanceSourceFreeTrial

	sub, err := s.SubRepo.GetActiveByUser(ctx, userID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	state.Subscription = sub

	return state, nil
}

func (s *subscriptionService) CreateCheckout(ctx context.Context, req CreateCheckoutRequest) (*CheckoutResult, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Plan type is required").
			Mark(ierr.ErrValidation)
	}

	plan, ok := types.PlanCatalog[req.PlanType]
	if !ok {
		return nil, ierr.NewError("unknown plan").
			WithHintf("Plan %q is not purchasable", req.PlanType).
			Mark(ierr.ErrValidation)
	}

	userID := types.GetUserID(ctx)

	finalPrice := plan.Price
	var appliedCoupon string
	if req.CouponCode != "" {
		c, err := s.CouponRepo.GetByCode(ctx, req.CouponCode)
		if err != nil {
			return nil, err
		}
		finalPrice = c.DiscountedPrice(plan.Price)
		appliedCoupon = c.Code

		if c.IsFullDiscount() {
			return s.freeCheckout(ctx, userID, plan, c.Code)
		}
	}

	sess, err := s.Gateway.CreateCheckoutSession(ctx, payment.CheckoutInput{
		UserID:      userID,
		UserEmail:   types.GetUserEmail(ctx),
		PlanType:    plan.Type,
		DisplayName: plan.DisplayName,
		Price:       finalPrice,
		CouponCode:  appliedCoupon,
	})
	if err != nil {
		return nil, err
	}

	sub := domainSub.NewPending(ctx, userID, plan.Type, sess.SessionID, finalPrice)
	if appliedCoupon != "" {
		sub.CouponCode = &appliedCoupon
	}
	if err := s.SubRepo.CreatePending(ctx, sub); err != nil {
		return nil, err
	}

	return &CheckoutResult{
		URL:             sess.URL,
		SessionID:       sess.SessionID,
		FinalPrice:      finalPrice,
		DiscountApplied: appliedCoupon != "",
	}, nil
}

// freeCheckout activates a fully discounted subscription without touching
// the payment provider. It still runs through the idempotent completion
// transaction so a double-submitted form activates exactly once.
func (s *subscriptionService) freeCheckout(ctx context.Context, userID string, plan types.Plan, couponCode string) (*CheckoutResult, error) {
	sessionID := s.IdempotencyGen.GenerateKey(idempotency.ScopeFreeCheckout, map[string]interface{}{
		"user_id":   userID,
		"plan_type": plan.Type,
	})

	sub, err := s.SubRepo.GetByStripeSession(ctx, sessionID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return nil, err
		}
		sub = domainSub.NewPending(ctx, userID, plan.Type, sessionID, decimal.Zero)
		sub.CouponCode = &couponCode
		if err := s.SubRepo.CreatePending(ctx, sub); err != nil {
			return nil, err
		}
	}

	activated, err := s.payments.CompleteFreeCheckout(ctx, sub.ID, sessionID)
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{
		Subscription:    activated,
		Completed:       true,
		FinalPrice:      decimal.Zero,
		DiscountApplied: true,
	}, nil
}
