package service

import (
	"context"
	"sync"
	"testing"

	domainLetter "github.com/lettercounsel/lettercounsel/internal/domain/letter"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/testutil"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type ReviewServiceSuite struct {
	testutil.BaseServiceTestSuite
	params   ServiceParams
	service  ReviewService
	reviewer string
}

func TestReviewService(t *testing.T) {
	suite.Run(t, new(ReviewServiceSuite))
}

func (s *ReviewServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestParams(&s.BaseServiceTestSuite)
	s.service = NewReviewService(s.params)
	s.reviewer = "user_attorney"
}

func (s *ReviewServiceSuite) reviewerCtx() context.Context {
	return s.ContextFor(s.reviewer, types.UserRoleAttorneyAdmin)
}

func (s *ReviewServiceSuite) seedReviewable(status types.LetterStatus, draft string) *domainLetter.Letter {
	l := &domainLetter.Letter{
		ID:           types.GenerateUUIDWithPrefix(types.UUIDPrefixLetter),
		UserID:       "user_owner",
		LetterType:   types.LetterTypeCeaseAndDesist,
		LetterStatus: status,
		IntakeData:   map[string]string{"sender_name": "A", "recipient_name": "B", "issue_description": "C"},
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	if draft != "" {
		l.AIDraftContent = lo.ToPtr(draft)
	}
	s.NoError(s.GetStores().LetterRepo.Create(s.GetContext(), l))
	return l
}

func (s *ReviewServiceSuite) TestListPendingReviewDefaults() {
	s.seedReviewable(types.LetterStatusPendingReview, "d")
	s.seedReviewable(types.LetterStatusUnderReview, "d")
	s.seedReviewable(types.LetterStatusCompleted, "d")

	letters, total, err := s.service.ListPendingReview(s.reviewerCtx(), nil)
	s.NoError(err)
	s.Equal(2, total)
	s.Len(letters, 2)
}

func (s *ReviewServiceSuite) TestStartReviewClaimsLetter() {
	l := s.seedReviewable(types.LetterStatusPendingReview, "d")

	claimed, err := s.service.StartReview(s.reviewerCtx(), l.ID)
	s.NoError(err)
	s.Equal(types.LetterStatusUnderReview, claimed.LetterStatus)
}

func (s *ReviewServiceSuite) TestStartReviewSingleWinner() {
	l := s.seedReviewable(types.LetterStatusPendingReview, "d")

	otherCtx := s.ContextFor("user_attorney2", types.UserRoleAttorneyAdmin)

	var wg sync.WaitGroup
	results := make([]error, 2)
	ctxs := []context.Context{s.reviewerCtx(), otherCtx}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.service.StartReview(ctxs[i], l.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			s.True(ierr.IsVersionConflict(err))
		}
	}
	s.Equal(1, winners)
}

func (s *ReviewServiceSuite) TestApproveDefaultsToDraft() {
	draft := "Approved as drafted"
	l := s.seedReviewable(types.LetterStatusUnderReview, draft)

	approved, err := s.service.Approve(s.reviewerCtx(), ApproveLetterRequest{LetterID: l.ID})
	s.NoError(err)
	s.Equal(types.LetterStatusApproved, approved.LetterStatus)
	s.NotNil(approved.FinalContent)
	s.Equal(draft, *approved.FinalContent)
	s.NotNil(approved.ApprovedAt)

	// The owner hears about it.
	msgs := s.GetDispatcher().MessagesByTemplate(types.TemplateLetterApproved)
	s.Len(msgs, 1)
	s.Equal("user_owner", msgs[0].Recipients[0].UserID)
}

func (s *ReviewServiceSuite) TestApproveWithEditedContent() {
	l := s.seedReviewable(types.LetterStatusUnderReview, "the draft")

	approved, err := s.service.Approve(s.reviewerCtx(), ApproveLetterRequest{
		LetterID:     l.ID,
		FinalContent: "the edited version",
		ReviewNotes:  "tightened the tone",
	})
	s.NoError(err)
	s.Equal("the edited version", *approved.FinalContent)
	s.Equal("tightened the tone", *approved.ReviewNotes)
}

func (s *ReviewServiceSuite) TestApproveWithoutDraftRefused() {
	l := s.seedReviewable(types.LetterStatusUnderReview, "")

	_, err := s.service.Approve(s.reviewerCtx(), ApproveLetterRequest{LetterID: l.ID})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *ReviewServiceSuite) TestRejectRequiresReason() {
	l := s.seedReviewable(types.LetterStatusUnderReview, "d")

	_, err := s.service.Reject(s.reviewerCtx(), RejectLetterRequest{LetterID: l.ID})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *ReviewServiceSuite) TestRejectRecordsReason() {
	l := s.seedReviewable(types.LetterStatusUnderReview, "d")

	rejected, err := s.service.Reject(s.reviewerCtx(), RejectLetterRequest{
		LetterID:        l.ID,
		RejectionReason: "needs the statute reference",
	})
	s.NoError(err)
	s.Equal(types.LetterStatusRejected, rejected.LetterStatus)
	s.Equal("needs the statute reference", *rejected.RejectionReason)

	msgs := s.GetDispatcher().MessagesByTemplate(types.TemplateLetterRejected)
	s.Len(msgs, 1)
	s.Equal("needs the statute reference", msgs[0].Data["rejection_reason"])
}

func (s *ReviewServiceSuite) TestConcurrentApproveRejectOneWinner() {
	l := s.seedReviewable(types.LetterStatusUnderReview, "d")

	var wg sync.WaitGroup
	var approveErr, rejectErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, approveErr = s.service.Approve(s.reviewerCtx(), ApproveLetterRequest{LetterID: l.ID})
	}()
	go func() {
		defer wg.Done()
		_, rejectErr = s.service.Reject(s.reviewerCtx(), RejectLetterRequest{
			LetterID:        l.ID,
			RejectionReason: "not ready",
		})
	}()
	wg.Wait()

	// Exactly one of the two decisions lands. The loser fails the optimistic
	// write, or the edge check if it read after the winner committed.
	decided := func(err error) bool {
		return ierr.IsVersionConflict(err) || ierr.IsInvalidTransition(err)
	}
	if approveErr == nil {
		s.True(decided(rejectErr))
	} else {
		s.NoError(rejectErr)
		s.True(decided(approveErr))
	}

	stored, err := s.GetStores().LetterRepo.Get(s.GetContext(), l.ID)
	s.NoError(err)
	s.Contains([]types.LetterStatus{types.LetterStatusApproved, types.LetterStatusRejected}, stored.LetterStatus)
}

func (s *ReviewServiceSuite) TestMarkCompleted() {
	l := s.seedReviewable(types.LetterStatusApproved, "d")

	adminCtx := s.ContextFor("user_super", types.UserRoleSuperAdmin)
	completed, err := s.service.MarkCompleted(adminCtx, l.ID)
	s.NoError(err)
	s.Equal(types.LetterStatusCompleted, completed.LetterStatus)
	s.NotNil(completed.CompletedAt)
}

func (s *ReviewServiceSuite) TestMarkCompletedNeedsCapability() {
	l := s.seedReviewable(types.LetterStatusApproved, "d")

	// Attorneys review but do not close out delivery.
	_, err := s.service.MarkCompleted(s.reviewerCtx(), l.ID)
	s.True(ierr.IsForbidden(err))
}

func (s *ReviewServiceSuite) TestReviewRequiresCapability() {
	l := s.seedReviewable(types.LetterStatusPendingReview, "d")

	subscriberCtx := s.ContextFor("user_sub", types.UserRoleSubscriber)
	_, err := s.service.StartReview(subscriberCtx, l.ID)
	s.True(ierr.IsForbidden(err))

	_, _, err = s.service.ListPendingReview(subscriberCtx, nil)
	s.True(ierr.IsForbidden(err))
}
