package service

import (
	"context"
	"time"

	domainCoupon "github.com/lettercounsel/lettercounsel/internal/domain/coupon"
	domainSub "github.com/lettercounsel/lettercounsel/internal/domain/subscription"
	domainEvent "github.com/lettercounsel/lettercounsel/internal/domain/webhookevent"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/samber/lo"
)

// PaymentService executes the payment completion transaction: webhook
// verification lives in the handler, everything from "event verified" to
// "subscription active" lives here.
type PaymentService interface {
	// HandleWebhook verifies and processes one provider webhook delivery.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error

	// CompleteCheckout activates the subscription tied to a checkout session.
	// Replays of the same event are a recorded no-op.
	CompleteCheckout(ctx context.Context, eventID, sessionID string) (*domainSub.Subscription, error)

	// CompleteFreeCheckout is the zero-payment activation path. The eventID is
	// synthesized deterministically from the session so it replays safely too.
	CompleteFreeCheckout(ctx context.Context, subscriptionID, sessionID string) (*domainSub.Subscription, error)
}

type paymentService struct {
	ServiceParams
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{ServiceParams: params}
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.Gateway.VerifyWebhook(payload, signature)
	if err != nil {
		return err
	}
	if !event.Handled {
		return nil
	}

	switch event.Type {
	case types.WebhookEventCheckoutCompleted:
		_, err := s.CompleteCheckout(ctx, event.ID, event.SessionID)
		return err
	}
	return nil
}

func (s *paymentService) CompleteCheckout(ctx context.Context, eventID, sessionID string) (*domainSub.Subscription, error) {
	sub, err := s.SubRepo.GetByStripeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.completeTransaction(ctx, eventID, types.WebhookEventCheckoutCompleted, sub)
}

func (s *paymentService) CompleteFreeCheckout(ctx context.Context, subscriptionID, sessionID string) (*domainSub.Subscription, error) {
	sub, err := s.SubRepo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	// One deterministic event per free checkout session.
	eventID := "free_" + sessionID
	return s.completeTransaction(ctx, eventID, types.WebhookEventFreeCheckout, sub)
}

// completeTransaction is the single activation path. The idempotency record,
// the activation, the coupon usage and the commission all commit or roll
// back together, so a replayed event can never half-activate or double-pay.
func (s *paymentService) completeTransaction(ctx context.Context, eventID string, eventType types.WebhookEventType, sub *domainSub.Subscription) (*domainSub.Subscription, error) {
	if sub.SubscriptionStatus == types.SubscriptionStatusActive {
		s.Logger.Infow("subscription already active, ignoring completion",
			"subscription_id", sub.ID,
			"event_id", eventID,
		)
		return sub, nil
	}

	plan, ok := types.PlanCatalog[sub.PlanType]
	if !ok {
		return nil, ierr.NewError("subscription references unknown plan").
			WithHint("Subscription plan is not in the catalog").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": sub.ID,
				"plan_type":       sub.PlanType,
			}).
			Mark(ierr.ErrSystem)
	}

	var (
		activated *domainSub.Subscription
		replayed  bool
	)
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		inserted, existing, err := s.WebhookEventRepo.CheckAndRecord(ctx, &domainEvent.ProcessedEvent{
			EventID:        eventID,
			EventType:      eventType,
			SubscriptionID: sub.ID,
		})
		if err != nil {
			return err
		}
		if !inserted {
			s.Logger.Infow("duplicate webhook event, skipping",
				"event_id", eventID,
				"first_processed_at", existing.ProcessedAt,
			)
			current, err := s.SubRepo.Get(ctx, sub.ID)
			if err != nil {
				return err
			}
			activated = current
			replayed = true
			return nil
		}

		now := time.Now().UTC()
		periodEnd := now.AddDate(0, 0, plan.PeriodDays)

		activated, err = s.SubRepo.ActivatePending(ctx, sub.ID,
			lo.ToPtr(plan.LettersPerPeriod), now, periodEnd)
		if err != nil {
			return err
		}

		if sub.CouponCode != nil && *sub.CouponCode != "" {
			if err := s.recordReferral(ctx, *sub.CouponCode, activated); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if replayed {
		return activated, nil
	}

	s.Logger.Infow("subscription activated",
		"subscription_id", activated.ID,
		"plan_type", activated.PlanType,
		"event_id", eventID,
	)

	notify(ctx, s.ServiceParams, types.TemplateSubscriptionActivated,
		[]types.NotificationRecipient{{UserID: activated.UserID}},
		map[string]interface{}{
			"plan_type":         plan.DisplayName,
			"letters_remaining": plan.LettersPerPeriod,
		})
	return activated, nil
}

// recordReferral increments the coupon and writes the employee commission.
// The commission insert is conditional on the subscription, so even two
// distinct events for one subscription pay at most once.
func (s *paymentService) recordReferral(ctx context.Context, couponCode string, sub *domainSub.Subscription) error {
	c, err := s.CouponRepo.GetByCode(ctx, couponCode)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Warnw("coupon disappeared before activation, skipping referral",
				"coupon_code", couponCode,
				"subscription_id", sub.ID,
			)
			return nil
		}
		return err
	}

	if err := s.CouponRepo.IncrementUsage(ctx, c.Code); err != nil {
		return err
	}

	commission := domainCoupon.NewCommission(ctx, c, sub.ID, sub.Price)
	created, err := s.CouponRepo.CreateCommission(ctx, commission)
	if err != nil {
		return err
	}
	if !created {
		s.Logger.Infow("commission already recorded for subscription",
			"subscription_id", sub.ID,
		)
		return nil
	}

	s.Logger.Infow("referral commission recorded",
		"employee_id", c.EmployeeID,
		"subscription_id", sub.ID,
		"amount", commission.Amount,
	)
	return nil
}
