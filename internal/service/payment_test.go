package service

import (
	"sync"
	"testing"

	domainCoupon "github.com/lettercounsel/lettercounsel/internal/domain/coupon"
	domainSub "github.com/lettercounsel/lettercounsel/internal/domain/subscription"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/payment"
	"github.com/lettercounsel/lettercounsel/internal/testutil"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	params  ServiceParams
	service PaymentService
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestParams(&s.BaseServiceTestSuite)
	s.service = NewPaymentService(s.params)
}

func (s *PaymentServiceSuite) seedPendingCheckout(sessionID string, couponCode *string) *domainSub.Subscription {
	sub := &domainSub.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUIDPrefixSubscription),
		UserID:             "user_buyer",
		PlanType:           types.PlanTypeMonthlyPro,
		SubscriptionStatus: types.SubscriptionStatusPending,
		StripeSessionID:    &sessionID,
		CouponCode:         couponCode,
		Price:              decimal.NewFromInt(99),
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.GetStores().SubRepo.AddSubscription(sub)
	return sub
}

func (s *PaymentServiceSuite) TestCompleteCheckoutActivates() {
	s.seedPendingCheckout("cs_100", nil)

	activated, err := s.service.CompleteCheckout(s.GetContext(), "evt_1", "cs_100")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, activated.SubscriptionStatus)
	s.Equal(5, *activated.LettersRemaining)
	s.False(activated.CurrentPeriodEnd.IsZero())

	msgs := s.GetDispatcher().MessagesByTemplate(types.TemplateSubscriptionActivated)
	s.Len(msgs, 1)
	s.Equal("user_buyer", msgs[0].Recipients[0].UserID)
}

func (s *PaymentServiceSuite) TestReplayedEventActivatesOnce() {
	sub := s.seedPendingCheckout("cs_200", nil)

	first, err := s.service.CompleteCheckout(s.GetContext(), "evt_2", "cs_200")
	s.NoError(err)
	s.Equal(5, *first.LettersRemaining)

	// Spend a credit, then replay the same event. The allowance must not
	// reset.
	deducted, err := s.GetStores().SubRepo.DeductAllowance(s.GetContext(), sub.ID)
	s.NoError(err)
	s.True(deducted)

	replayed, err := s.service.CompleteCheckout(s.GetContext(), "evt_2", "cs_200")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, replayed.SubscriptionStatus)
	s.Equal(4, *replayed.LettersRemaining)

	// Activation was announced exactly once.
	s.Len(s.GetDispatcher().MessagesByTemplate(types.TemplateSubscriptionActivated), 1)
}

func (s *PaymentServiceSuite) TestConcurrentDuplicateDeliveries() {
	s.seedPendingCheckout("cs_300", nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.CompleteCheckout(s.GetContext(), "evt_3", "cs_300")
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.Len(s.GetDispatcher().MessagesByTemplate(types.TemplateSubscriptionActivated), 1)
}

func (s *PaymentServiceSuite) TestCouponReferralPaysOnce() {
	s.GetStores().CouponRepo.AddCoupon(&domainCoupon.Coupon{
		Code:            "EMP10",
		EmployeeID:      "user_employee",
		DiscountPercent: 10,
		CommissionRate:  decimal.NewFromFloat(0.2),
	})
	sub := s.seedPendingCheckout("cs_400", lo.ToPtr("EMP10"))

	_, err := s.service.CompleteCheckout(s.GetContext(), "evt_4", "cs_400")
	s.NoError(err)

	// Replay does not double-pay.
	_, err = s.service.CompleteCheckout(s.GetContext(), "evt_4", "cs_400")
	s.NoError(err)
	// A distinct event for the same session is absorbed by the active check.
	_, err = s.service.CompleteCheckout(s.GetContext(), "evt_4b", "cs_400")
	s.NoError(err)

	commissions, err := s.GetStores().CouponRepo.ListCommissionsByEmployee(s.GetContext(), "user_employee")
	s.NoError(err)
	s.Len(commissions, 1)
	s.Equal(sub.ID, commissions[0].SubscriptionID)
	// 20% of the 99 the subscriber actually paid.
	s.True(decimal.NewFromFloat(19.80).Equal(commissions[0].Amount))

	c, err := s.GetStores().CouponRepo.GetByCode(s.GetContext(), "EMP10")
	s.NoError(err)
	s.Equal(1, c.UsageCount)
}

func (s *PaymentServiceSuite) TestCompleteFreeCheckoutIdempotent() {
	sub := s.seedPendingCheckout("free-session-key", lo.ToPtr("EMP100"))

	first, err := s.service.CompleteFreeCheckout(s.GetContext(), sub.ID, "free-session-key")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, first.SubscriptionStatus)

	second, err := s.service.CompleteFreeCheckout(s.GetContext(), sub.ID, "free-session-key")
	s.NoError(err)
	s.Equal(first.ID, second.ID)

	s.Len(s.GetDispatcher().MessagesByTemplate(types.TemplateSubscriptionActivated), 1)
}

func (s *PaymentServiceSuite) TestHandleWebhookBadSignature() {
	err := s.service.HandleWebhook(s.GetContext(), []byte("{}"), "wrong-signature")
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *PaymentServiceSuite) TestHandleWebhookIgnoredEventType() {
	s.GetGateway().Event = &payment.WebhookEvent{Handled: false}

	err := s.service.HandleWebhook(s.GetContext(), []byte("{}"), s.GetGateway().Signature)
	s.NoError(err)
}

func (s *PaymentServiceSuite) TestHandleWebhookCompletesCheckout() {
	s.seedPendingCheckout("cs_500", nil)
	s.GetGateway().Event = &payment.WebhookEvent{
		ID:        "evt_5",
		Type:      types.WebhookEventCheckoutCompleted,
		SessionID: "cs_500",
		Handled:   true,
	}

	err := s.service.HandleWebhook(s.GetContext(), []byte("{}"), s.GetGateway().Signature)
	s.NoError(err)

	activated, err := s.GetStores().SubRepo.GetByStripeSession(s.GetContext(), "cs_500")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, activated.SubscriptionStatus)
}

func (s *PaymentServiceSuite) TestUnknownSessionFails() {
	_, err := s.service.CompleteCheckout(s.GetContext(), "evt_6", "cs_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
