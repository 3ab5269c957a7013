package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	domainLetter "github.com/lettercounsel/lettercounsel/internal/domain/letter"
	domainSub "github.com/lettercounsel/lettercounsel/internal/domain/subscription"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/testutil"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LetterServiceSuite struct {
	testutil.BaseServiceTestSuite
	params    ServiceParams
	allowance AllowanceService
	service   LetterService
}

func TestLetterService(t *testing.T) {
	suite.Run(t, new(LetterServiceSuite))
}

func (s *LetterServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestParams(&s.BaseServiceTestSuite)
	s.allowance = NewAllowanceService(s.params)
	s.service = NewLetterService(s.params, s.allowance)
}

func (s *LetterServiceSuite) seedActiveSubscription(userID string, letters int) *domainSub.Subscription {
	sub := &domainSub.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUIDPrefixSubscription),
		UserID:             userID,
		PlanType:           types.PlanTypeMonthlyBasic,
		SubscriptionStatus: types.SubscriptionStatusActive,
		LettersRemaining:   lo.ToPtr(letters),
		Price:              decimal.NewFromInt(49),
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.GetStores().SubRepo.AddSubscription(sub)
	return sub
}

func (s *LetterServiceSuite) seedLetter(userID string, status types.LetterStatus) *domainLetter.Letter {
	l := &domainLetter.Letter{
		ID:           types.GenerateUUIDWithPrefix(types.UUIDPrefixLetter),
		UserID:       userID,
		LetterType:   types.LetterTypeDemand,
		LetterStatus: status,
		IntakeData:   validIntake(),
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().LetterRepo.Create(context.Background(), l))
	return l
}

func validIntake() map[string]string {
	return map[string]string{
		"sender_name":       "Jordan Blake",
		"recipient_name":    "Acme Corp",
		"issue_description": "Unpaid invoice from March",
		"desired_outcome":   "Payment in full within 14 days",
		"amount_owed":       "1200.00",
	}
}

func (s *LetterServiceSuite) auditActions(letterID string) []types.AuditAction {
	entries, err := s.GetStores().AuditRepo.ListByLetter(context.Background(), letterID)
	s.NoError(err)
	actions := make([]types.AuditAction, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	return actions
}

func (s *LetterServiceSuite) TestGenerateLetterWithSubscription() {
	ctx := s.GetContext()
	sub := s.seedActiveSubscription(types.GetUserID(ctx), 2)
	// An earlier letter spent the free trial, so this one draws on the balance.
	s.seedLetter(types.GetUserID(ctx), types.LetterStatusCompleted)

	l, err := s.service.GenerateLetter(ctx, GenerateLetterRequest{
		LetterType: types.LetterTypeDemand,
		IntakeData: validIntake(),
	})
	s.NoError(err)
	s.Equal(types.LetterStatusPendingReview, l.LetterStatus)
	s.NotNil(l.AIDraftContent)
	s.Equal(s.GetGenerator().Content, *l.AIDraftContent)

	// One credit consumed.
	stored, err := s.GetStores().SubRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(1, *stored.LettersRemaining)

	// Creation, deduction and the transition all made the trail.
	actions := s.auditActions(l.ID)
	s.Contains(actions, types.AuditActionLetterCreated)
	s.Contains(actions, types.AuditActionAllowanceDeducted)
	s.Contains(actions, types.AuditActionStatusTransition)

	// Reviewers were told there is work.
	pending := s.GetDispatcher().MessagesByTemplate(types.TemplateLetterPendingReview)
	s.Len(pending, 1)
	s.True(pending[0].Recipients[0].AdminGroup)
}

func (s *LetterServiceSuite) TestGenerateLetterFailureRefunds() {
	ctx := s.GetContext()
	sub := s.seedActiveSubscription(types.GetUserID(ctx), 2)
	s.seedLetter(types.GetUserID(ctx), types.LetterStatusCompleted)
	s.GetGenerator().Err = errors.New("provider timeout")

	_, err := s.service.GenerateLetter(ctx, GenerateLetterRequest{
		LetterType: types.LetterTypeDemand,
		IntakeData: validIntake(),
	})
	s.Error(err)

	// The letter exists in failed status even though the call errored.
	letters, total, listErr := s.service.ListLetters(ctx, &types.LetterFilter{
		Statuses: []types.LetterStatus{types.LetterStatusFailed},
	})
	s.NoError(listErr)
	s.Equal(1, total)
	s.Equal(types.LetterStatusFailed, letters[0].LetterStatus)

	// The refundable credit went back.
	stored, err := s.GetStores().SubRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(2, *stored.LettersRemaining)

	actions := s.auditActions(letters[0].ID)
	s.Contains(actions, types.AuditActionGenerationFailed)
	s.Contains(actions, types.AuditActionAllowanceRefunded)

	// Nothing was sent for a letter that never reached review.
	s.Empty(s.GetDispatcher().MessagesByTemplate(types.TemplateLetterPendingReview))
}

func (s *LetterServiceSuite) TestGenerateLetterFreeTrial() {
	ctx := s.GetContext()

	l, err := s.service.GenerateLetter(ctx, GenerateLetterRequest{
		LetterType: types.LetterTypeDemand,
		IntakeData: validIntake(),
	})
	s.NoError(err)
	s.Equal(types.LetterStatusPendingReview, l.LetterStatus)

	// The trial is consumed by the first non-failed letter.
	_, err = s.service.GenerateLetter(ctx, GenerateLetterRequest{
		LetterType: types.LetterTypeDemand,
		IntakeData: validIntake(),
	})
	s.Error(err)
	s.True(ierr.IsInsufficientAllowance(err))
}

func (s *LetterServiceSuite) TestGenerateLetterTrialBeforePaidCredit() {
	ctx := s.GetContext()
	sub := s.seedActiveSubscription(types.GetUserID(ctx), 2)

	// The first-ever letter is the trial even with a funded subscription.
	l, err := s.service.GenerateLetter(ctx, GenerateLetterRequest{
		LetterType: types.LetterTypeDemand,
		IntakeData: validIntake(),
	})
	s.NoError(err)
	s.Equal(types.LetterStatusPendingReview, l.LetterStatus)

	stored, err := s.GetStores().SubRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(2, *stored.LettersRemaining)

	// The second letter draws on the balance.
	_, err = s.service.GenerateLetter(ctx, GenerateLetterRequest{
		LetterType: types.LetterTypeDemand,
		IntakeData: validIntake(),
	})
	s.NoError(err)

	stored, err = s.GetStores().SubRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(1, *stored.LettersRemaining)
}

func (s *LetterServiceSuite) TestGenerateLetterSurvivesCallerDisconnect() {
	s.GetGenerator().RespectContext = true

	ctx, cancel := context.WithCancel(s.GetContext())
	cancel()

	l, err := s.service.GenerateLetter(ctx, GenerateLetterRequest{
		LetterType: types.LetterTypeDemand,
		IntakeData: validIntake(),
	})
	s.NoError(err)
	s.Equal(types.LetterStatusPendingReview, l.LetterStatus)
}

func (s *LetterServiceSuite) TestGenerateLetterInsufficientAllowance() {
	ctx := s.GetContext()
	s.seedLetter(types.GetUserID(ctx), types.LetterStatusCompleted)

	_, err := s.service.GenerateLetter(ctx, GenerateLetterRequest{
		LetterType: types.LetterTypeDemand,
		IntakeData: validIntake(),
	})
	s.Error(err)
	s.True(ierr.IsInsufficientAllowance(err))

	// No new letter came out of the refused request.
	letters, total, listErr := s.service.ListLetters(ctx, nil)
	s.NoError(listErr)
	s.Equal(1, total)
	s.Len(letters, 1)
}

func (s *LetterServiceSuite) TestGenerateLetterInvalidIntakeCostsNothing() {
	ctx := s.GetContext()
	sub := s.seedActiveSubscription(types.GetUserID(ctx), 1)

	_, err := s.service.GenerateLetter(ctx, GenerateLetterRequest{
		LetterType: types.LetterTypeDemand,
		IntakeData: map[string]string{"sender_name": "Jordan Blake"},
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	stored, err := s.GetStores().SubRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(1, *stored.LettersRemaining)
}

func (s *LetterServiceSuite) TestConcurrentGenerationSingleCredit() {
	ctx := s.GetContext()
	userID := types.GetUserID(ctx)
	sub := s.seedActiveSubscription(userID, 1)
	// An earlier letter rules the free trial out as a fallback.
	s.seedLetter(userID, types.LetterStatusCompleted)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.service.GenerateLetter(ctx, GenerateLetterRequest{
				LetterType: types.LetterTypeDemand,
				IntakeData: validIntake(),
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			s.True(ierr.IsInsufficientAllowance(err))
		}
	}
	s.Equal(1, succeeded)

	stored, err := s.GetStores().SubRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(0, *stored.LettersRemaining)
}

func (s *LetterServiceSuite) TestConcurrentFreeTrialSingleWinner() {
	ctx := s.GetContext()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.service.GenerateLetter(ctx, GenerateLetterRequest{
				LetterType: types.LetterTypeDemand,
				IntakeData: validIntake(),
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		}
	}
	s.Equal(1, succeeded)
}

func (s *LetterServiceSuite) TestResubmitRejectedLetter() {
	ctx := s.GetContext()
	userID := types.GetUserID(ctx)
	sub := s.seedActiveSubscription(userID, 1)

	draft := "Original draft body"
	reason := "Cite the contract clause"
	l := &domainLetter.Letter{
		ID:              types.GenerateUUIDWithPrefix(types.UUIDPrefixLetter),
		UserID:          userID,
		LetterType:      types.LetterTypeDemand,
		LetterStatus:    types.LetterStatusRejected,
		IntakeData:      validIntake(),
		AIDraftContent:  &draft,
		RejectionReason: &reason,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().LetterRepo.Create(ctx, l))

	updated, err := s.service.ResubmitLetter(ctx, l.ID)
	s.NoError(err)
	s.Equal(types.LetterStatusPendingReview, updated.LetterStatus)
	s.Nil(updated.RejectionReason)

	// Feedback reached the generation prompt.
	req := s.GetGenerator().LastRequest()
	s.NotNil(req)
	s.NotNil(req.PriorContext)
	s.Contains(*req.PriorContext, reason)
	s.Contains(*req.PriorContext, draft)

	// A resubmission pays like any generation.
	stored, err := s.GetStores().SubRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(0, *stored.LettersRemaining)

	actions := s.auditActions(l.ID)
	s.Contains(actions, types.AuditActionLetterResubmitted)
	s.Contains(actions, types.AuditActionAllowanceDeducted)
}

func (s *LetterServiceSuite) TestResubmitInsufficientAllowance() {
	ctx := s.GetContext()
	userID := types.GetUserID(ctx)
	s.seedActiveSubscription(userID, 0)
	// The rejected letter itself rules the trial out.
	l := s.seedLetter(userID, types.LetterStatusRejected)

	_, err := s.service.ResubmitLetter(ctx, l.ID)
	s.Error(err)
	s.True(ierr.IsInsufficientAllowance(err))

	// The letter stays rejected and available for a later resubmission.
	stored, err := s.GetStores().LetterRepo.Get(ctx, l.ID)
	s.NoError(err)
	s.Equal(types.LetterStatusRejected, stored.LetterStatus)
}

func (s *LetterServiceSuite) TestResubmitFailureRefundsCredit() {
	ctx := s.GetContext()
	userID := types.GetUserID(ctx)
	sub := s.seedActiveSubscription(userID, 1)
	l := s.seedLetter(userID, types.LetterStatusRejected)
	s.GetGenerator().Err = errors.New("provider timeout")

	_, err := s.service.ResubmitLetter(ctx, l.ID)
	s.Error(err)

	stored, err := s.GetStores().LetterRepo.Get(ctx, l.ID)
	s.NoError(err)
	s.Equal(types.LetterStatusFailed, stored.LetterStatus)

	storedSub, err := s.GetStores().SubRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(1, *storedSub.LettersRemaining)
}

func (s *LetterServiceSuite) TestResubmitRequiresRejectedStatus() {
	ctx := s.GetContext()
	l := s.seedLetter(types.GetUserID(ctx), types.LetterStatusPendingReview)

	_, err := s.service.ResubmitLetter(ctx, l.ID)
	s.Error(err)
	s.True(ierr.IsInvalidTransition(err))
}

func (s *LetterServiceSuite) TestRetryFailedLetterPaysAgain() {
	ctx := s.GetContext()
	userID := types.GetUserID(ctx)
	sub := s.seedActiveSubscription(userID, 1)
	// A non-failed letter spent the trial; the retry must pay from the balance.
	s.seedLetter(userID, types.LetterStatusCompleted)
	l := s.seedLetter(userID, types.LetterStatusFailed)

	updated, err := s.service.RetryLetter(ctx, l.ID)
	s.NoError(err)
	s.Equal(types.LetterStatusPendingReview, updated.LetterStatus)

	stored, err := s.GetStores().SubRepo.Get(ctx, sub.ID)
	s.NoError(err)
	s.Equal(0, *stored.LettersRemaining)

	actions := s.auditActions(l.ID)
	s.Contains(actions, types.AuditActionAllowanceDeducted)
	s.Contains(actions, types.AuditActionStatusTransition)
}

func (s *LetterServiceSuite) TestRetryRequiresFailedStatus() {
	ctx := s.GetContext()
	l := s.seedLetter(types.GetUserID(ctx), types.LetterStatusPendingReview)

	_, err := s.service.RetryLetter(ctx, l.ID)
	s.Error(err)
	s.True(ierr.IsInvalidTransition(err))
}

func (s *LetterServiceSuite) TestDeleteLetter() {
	ctx := s.GetContext()
	userID := types.GetUserID(ctx)
	l := s.seedLetter(userID, types.LetterStatusRejected)

	s.NoError(s.service.DeleteLetter(ctx, l.ID))

	_, err := s.GetStores().LetterRepo.Get(ctx, l.ID)
	s.True(ierr.IsNotFound(err))

	// The trail survives the letter.
	s.Contains(s.auditActions(l.ID), types.AuditActionLetterDeleted)
}

func (s *LetterServiceSuite) TestDeleteLetterUnderReviewRefused() {
	ctx := s.GetContext()
	l := s.seedLetter(types.GetUserID(ctx), types.LetterStatusUnderReview)

	err := s.service.DeleteLetter(ctx, l.ID)
	s.Error(err)

	_, getErr := s.GetStores().LetterRepo.Get(ctx, l.ID)
	s.NoError(getErr)
}

func (s *LetterServiceSuite) TestGetLetterAccess() {
	ownerCtx := s.GetContext()
	l := s.seedLetter(types.GetUserID(ownerCtx), types.LetterStatusPendingReview)

	_, err := s.service.GetLetter(ownerCtx, l.ID)
	s.NoError(err)

	strangerCtx := s.ContextFor("user_other", types.UserRoleSubscriber)
	_, err = s.service.GetLetter(strangerCtx, l.ID)
	s.True(ierr.IsForbidden(err))

	adminCtx := s.ContextFor("user_admin", types.UserRoleAttorneyAdmin)
	_, err = s.service.GetLetter(adminCtx, l.ID)
	s.NoError(err)
}

func (s *LetterServiceSuite) TestListLettersScopedToOwner() {
	ownerCtx := s.GetContext()
	s.seedLetter(types.GetUserID(ownerCtx), types.LetterStatusPendingReview)
	s.seedLetter("user_other", types.LetterStatusPendingReview)

	letters, total, err := s.service.ListLetters(ownerCtx, &types.LetterFilter{UserID: "user_other"})
	s.NoError(err)
	s.Equal(1, total)
	s.Equal(types.GetUserID(ownerCtx), letters[0].UserID)

	adminCtx := s.ContextFor("user_admin", types.UserRoleSuperAdmin)
	_, total, err = s.service.ListLetters(adminCtx, nil)
	s.NoError(err)
	s.Equal(2, total)
}

func (s *LetterServiceSuite) TestGenerateLetterRequiresCapability() {
	employeeCtx := s.ContextFor("user_emp", types.UserRoleEmployee)

	_, err := s.service.GenerateLetter(employeeCtx, GenerateLetterRequest{
		LetterType: types.LetterTypeDemand,
		IntakeData: validIntake(),
	})
	s.True(ierr.IsForbidden(err))
}
