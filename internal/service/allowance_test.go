package service

import (
	"testing"
	"time"

	domainSub "github.com/lettercounsel/lettercounsel/internal/domain/subscription"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/testutil"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AllowanceServiceSuite struct {
	testutil.BaseServiceTestSuite
	params  ServiceParams
	service AllowanceService
}

func TestAllowanceService(t *testing.T) {
	suite.Run(t, new(AllowanceServiceSuite))
}

func (s *AllowanceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestParams(&s.BaseServiceTestSuite)
	s.service = NewAllowanceService(s.params)
}

func (s *AllowanceServiceSuite) seedSubscription(userID string, remaining *int, unlimited bool) *domainSub.Subscription {
	sub := &domainSub.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUIDPrefixSubscription),
		UserID:             userID,
		PlanType:           types.PlanTypeMonthlyPro,
		SubscriptionStatus: types.SubscriptionStatusActive,
		LettersRemaining:   remaining,
		IsUnlimited:        unlimited,
		Price:              decimal.NewFromInt(99),
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.GetStores().SubRepo.AddSubscription(sub)
	return sub
}

func (s *AllowanceServiceSuite) TestDeductUnlimitedRole() {
	ctx := s.ContextFor("user_super", types.UserRoleSuperAdmin)

	d, err := s.service.Deduct(ctx, "user_super")
	s.NoError(err)
	s.Equal(AllowanceSourceUnlimited, d.Source)
	s.False(d.Refundable)
}

func (s *AllowanceServiceSuite) TestDeductSubscriptionCredit() {
	ctx := s.GetContext()
	sub := s.seedSubscription(types.GetUserID(ctx), lo.ToPtr(3), false)
	// A prior letter rules the trial out.
	seedLetterForUser(&s.BaseServiceTestSuite, types.GetUserID(ctx), types.LetterStatusCompleted)

	d, err := s.service.Deduct(ctx, types.GetUserID(ctx))
	s.NoError(err)
	s.Equal(AllowanceSourceSubscription, d.Source)
	s.Equal(sub.ID, d.SubscriptionID)
	s.True(d.Refundable)

	stored, err := s.GetStores().SubRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(2, *stored.LettersRemaining)
}

func (s *AllowanceServiceSuite) TestDeductUnlimitedSubscription() {
	ctx := s.GetContext()
	sub := s.seedSubscription(types.GetUserID(ctx), nil, true)

	d, err := s.service.Deduct(ctx, types.GetUserID(ctx))
	s.NoError(err)
	s.Equal(AllowanceSourceSubscription, d.Source)
	s.Equal(sub.ID, d.SubscriptionID)
	s.False(d.Refundable)
}

func (s *AllowanceServiceSuite) TestDeductFreeTrial() {
	ctx := s.GetContext()

	d, err := s.service.Deduct(ctx, types.GetUserID(ctx))
	s.NoError(err)
	s.Equal(AllowanceSourceFreeTrial, d.Source)
	s.False(d.Refundable)
}

func (s *AllowanceServiceSuite) TestDeductTrialOutranksPaidCredit() {
	ctx := s.GetContext()
	sub := s.seedSubscription(types.GetUserID(ctx), lo.ToPtr(3), false)

	d, err := s.service.Deduct(ctx, types.GetUserID(ctx))
	s.NoError(err)
	s.Equal(AllowanceSourceFreeTrial, d.Source)
	s.False(d.Refundable)

	// The paid balance is untouched.
	stored, err := s.GetStores().SubRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(3, *stored.LettersRemaining)
}

func (s *AllowanceServiceSuite) TestDeductExhausted() {
	ctx := s.GetContext()
	userID := types.GetUserID(ctx)
	s.seedSubscription(userID, lo.ToPtr(0), false)

	// A prior letter rules the trial out.
	seedLetterForUser(&s.BaseServiceTestSuite, userID, types.LetterStatusCompleted)

	_, err := s.service.Deduct(ctx, userID)
	s.Error(err)
	s.True(ierr.IsInsufficientAllowance(err))
}

func (s *AllowanceServiceSuite) TestRefundOnlyRefundable() {
	ctx := s.GetContext()
	sub := s.seedSubscription(types.GetUserID(ctx), lo.ToPtr(1), false)

	s.NoError(s.service.Refund(ctx, nil))
	s.NoError(s.service.Refund(ctx, &Deduction{Source: AllowanceSourceFreeTrial}))

	stored, err := s.GetStores().SubRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(1, *stored.LettersRemaining)

	s.NoError(s.service.Refund(ctx, &Deduction{
		Source:         AllowanceSourceSubscription,
		SubscriptionID: sub.ID,
		Refundable:     true,
	}))

	stored, err = s.GetStores().SubRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(2, *stored.LettersRemaining)
}

func (s *AllowanceServiceSuite) TestCheckEligibilityNeverMutates() {
	ctx := s.GetContext()
	sub := s.seedSubscription(types.GetUserID(ctx), lo.ToPtr(2), false)
	seedLetterForUser(&s.BaseServiceTestSuite, types.GetUserID(ctx), types.LetterStatusCompleted)

	e, err := s.service.CheckEligibility(ctx, types.GetUserID(ctx))
	s.NoError(err)
	s.True(e.Eligible)
	s.Equal(AllowanceSourceSubscription, e.Source)
	s.Equal(2, *e.LettersRemaining)

	stored, err := s.GetStores().SubRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(2, *stored.LettersRemaining)
}

func (s *AllowanceServiceSuite) TestCheckEligibilityExhaustedNoTrial() {
	ctx := s.GetContext()
	userID := types.GetUserID(ctx)
	s.seedSubscription(userID, lo.ToPtr(0), false)
	seedLetterForUser(&s.BaseServiceTestSuite, userID, types.LetterStatusCompleted)

	e, err := s.service.CheckEligibility(ctx, userID)
	s.NoError(err)
	s.False(e.Eligible)
	s.Equal(0, *e.LettersRemaining)
}

func (s *AllowanceServiceSuite) TestDeductAfterPeriodRollover() {
	ctx := s.GetContext()
	userID := types.GetUserID(ctx)
	seedLetterForUser(&s.BaseServiceTestSuite, userID, types.LetterStatusCompleted)

	// A depleted balance whose billing period ended yesterday.
	sub := &domainSub.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUIDPrefixSubscription),
		UserID:             userID,
		PlanType:           types.PlanTypeMonthlyPro,
		SubscriptionStatus: types.SubscriptionStatusActive,
		LettersRemaining:   lo.ToPtr(0),
		CurrentPeriodStart: time.Now().UTC().AddDate(0, 0, -31),
		CurrentPeriodEnd:   time.Now().UTC().AddDate(0, 0, -1),
		Price:              decimal.NewFromInt(99),
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	s.GetStores().SubRepo.AddSubscription(sub)

	d, err := s.service.Deduct(ctx, userID)
	s.NoError(err)
	s.Equal(AllowanceSourceSubscription, d.Source)
	s.True(d.Refundable)

	// The plan allowance was reset before the deduction and the window moved.
	stored, err := s.GetStores().SubRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(types.PlanCatalog[types.PlanTypeMonthlyPro].LettersPerPeriod-1, *stored.LettersRemaining)
	s.True(stored.CurrentPeriodEnd.After(time.Now().UTC()))
}

func (s *AllowanceServiceSuite) TestCheckEligibilityRollsOverLapsedPeriod() {
	ctx := s.GetContext()
	userID := types.GetUserID(ctx)
	seedLetterForUser(&s.BaseServiceTestSuite, userID, types.LetterStatusCompleted)

	sub := &domainSub.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUIDPrefixSubscription),
		UserID:             userID,
		PlanType:           types.PlanTypeMonthlyBasic,
		SubscriptionStatus: types.SubscriptionStatusActive,
		LettersRemaining:   lo.ToPtr(0),
		CurrentPeriodStart: time.Now().UTC().AddDate(0, 0, -60),
		CurrentPeriodEnd:   time.Now().UTC().AddDate(0, 0, -30),
		Price:              decimal.NewFromInt(49),
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	s.GetStores().SubRepo.AddSubscription(sub)

	e, err := s.service.CheckEligibility(ctx, userID)
	s.NoError(err)
	s.True(e.Eligible)
	s.Equal(AllowanceSourceSubscription, e.Source)
	s.Equal(types.PlanCatalog[types.PlanTypeMonthlyBasic].LettersPerPeriod, *e.LettersRemaining)
}
