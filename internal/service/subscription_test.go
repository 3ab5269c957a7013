package service

import (
	"testing"

	domainCoupon "github.com/lettercounsel/lettercounsel/internal/domain/coupon"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/testutil"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	params  ServiceParams
	service SubscriptionService
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestParams(&s.BaseServiceTestSuite)
	allowance := NewAllowanceService(s.params)
	payments := NewPaymentService(s.params)
	s.service = NewSubscriptionService(s.params, allowance, payments)
}

func (s *SubscriptionServiceSuite) TestGetPlansSortedByPrice() {
	plans, err := s.service.GetPlans(s.GetContext())
	s.NoError(err)
	s.Len(plans, 3)
	for i := 1; i < len(plans); i++ {
		s.True(plans[i-1].Price.LessThanOrEqual(plans[i].Price))
	}

	// The second read serves from cache and agrees with the first.
	again, err := s.service.GetPlans(s.GetContext())
	s.NoError(err)
	s.Equal(plans, again)
}

func (s *SubscriptionServiceSuite) TestGetCurrentStateFreeTrial() {
	state, err := s.service.GetCurrentState(s.GetContext())
	s.NoError(err)
	s.Nil(state.Subscription)
	s.True(state.Eligible)
	s.True(state.FreeTrialAvailable)
}

func (s *SubscriptionServiceSuite) TestCreateCheckoutCreatesPending() {
	result, err := s.service.CreateCheckout(s.GetContext(), CreateCheckoutRequest{
		PlanType: types.PlanTypeMonthlyBasic,
	})
	s.NoError(err)
	s.False(result.Completed)
	s.NotEmpty(result.URL)
	s.NotEmpty(result.SessionID)
	s.True(decimal.NewFromInt(49).Equal(result.FinalPrice))

	pending, err := s.GetStores().SubRepo.GetByStripeSession(s.GetContext(), result.SessionID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPending, pending.SubscriptionStatus)
	s.Equal(types.GetUserID(s.GetContext()), pending.UserID)
}

func (s *SubscriptionServiceSuite) TestCreateCheckoutUnknownPlan() {
	_, err := s.service.CreateCheckout(s.GetContext(), CreateCheckoutRequest{
		PlanType: types.PlanTypeFreeTrial,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestCreateCheckoutAppliesCoupon() {
	s.GetStores().CouponRepo.AddCoupon(&domainCoupon.Coupon{
		Code:            "HALF",
		EmployeeID:      "user_employee",
		DiscountPercent: 50,
		CommissionRate:  decimal.NewFromFloat(0.1),
	})

	result, err := s.service.CreateCheckout(s.GetContext(), CreateCheckoutRequest{
		PlanType:   types.PlanTypeMonthlyPro,
		CouponCode: "HALF",
	})
	s.NoError(err)
	s.True(result.DiscountApplied)
	s.True(decimal.NewFromFloat(49.50).Equal(result.FinalPrice))

	// The discounted price is what the provider was asked to charge.
	sessions := s.GetGateway().CreatedSessions
	s.Len(sessions, 1)
	s.True(decimal.NewFromFloat(49.50).Equal(sessions[0].Price))
}

func (s *SubscriptionServiceSuite) TestFullDiscountActivatesImmediately() {
	s.GetStores().CouponRepo.AddCoupon(&domainCoupon.Coupon{
		Code:            "EMP100",
		EmployeeID:      "user_employee",
		DiscountPercent: 100,
		CommissionRate:  decimal.NewFromFloat(0.1),
	})

	result, err := s.service.CreateCheckout(s.GetContext(), CreateCheckoutRequest{
		PlanType:   types.PlanTypeMonthlyBasic,
		CouponCode: "EMP100",
	})
	s.NoError(err)
	s.True(result.Completed)
	s.Empty(result.URL)
	s.NotNil(result.Subscription)
	s.Equal(types.SubscriptionStatusActive, result.Subscription.SubscriptionStatus)
	s.True(decimal.Zero.Equal(result.FinalPrice))

	// The provider was never involved.
	s.Empty(s.GetGateway().CreatedSessions)

	// Submitting the same form again lands on the same subscription.
	again, err := s.service.CreateCheckout(s.GetContext(), CreateCheckoutRequest{
		PlanType:   types.PlanTypeMonthlyBasic,
		CouponCode: "EMP100",
	})
	s.NoError(err)
	s.Equal(result.Subscription.ID, again.Subscription.ID)
	s.Len(s.GetDispatcher().MessagesByTemplate(types.TemplateSubscriptionActivated), 1)
}

func (s *SubscriptionServiceSuite) TestUnknownCouponRejected() {
	_, err := s.service.CreateCheckout(s.GetContext(), CreateCheckoutRequest{
		PlanType:   types.PlanTypeMonthlyBasic,
		CouponCode: "NOPE",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
