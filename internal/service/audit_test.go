package service

import (
	"testing"

	domainAudit "github.com/lettercounsel/lettercounsel/internal/domain/audit"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/testutil"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/stretchr/testify/suite"
)

type AuditServiceSuite struct {
	testutil.BaseServiceTestSuite
	params  ServiceParams
	service AuditService
}

func TestAuditService(t *testing.T) {
	suite.Run(t, new(AuditServiceSuite))
}

func (s *AuditServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestParams(&s.BaseServiceTestSuite)
	s.service = NewAuditService(s.params)
}

func (s *AuditServiceSuite) TestGetAuditTrailOwner() {
	ctx := s.GetContext()
	l := seedLetterForUser(&s.BaseServiceTestSuite, types.GetUserID(ctx), types.LetterStatusPendingReview)

	entry := domainAudit.New(ctx, l.ID, types.AuditActionLetterCreated, types.GetUserID(ctx))
	s.NoError(s.GetStores().AuditRepo.Create(ctx, entry))

	trail, err := s.service.GetAuditTrail(ctx, l.ID)
	s.NoError(err)
	s.Len(trail, 1)
	s.Equal(types.AuditActionLetterCreated, trail[0].Action)
}

func (s *AuditServiceSuite) TestGetAuditTrailStrangerDenied() {
	l := seedLetterForUser(&s.BaseServiceTestSuite, "user_owner", types.LetterStatusPendingReview)

	strangerCtx := s.ContextFor("user_stranger", types.UserRoleSubscriber)
	_, err := s.service.GetAuditTrail(strangerCtx, l.ID)
	s.Error(err)
	s.True(ierr.IsForbidden(err))
}

func (s *AuditServiceSuite) TestGetAuditTrailAdmin() {
	l := seedLetterForUser(&s.BaseServiceTestSuite, "user_owner", types.LetterStatusPendingReview)

	adminCtx := s.ContextFor("user_attorney", types.UserRoleAttorneyAdmin)
	_, err := s.service.GetAuditTrail(adminCtx, l.ID)
	s.NoError(err)
}

func (s *AuditServiceSuite) TestGetAuditTrailReferringEmployee() {
	l := seedLetterForUser(&s.BaseServiceTestSuite, "user_owner", types.LetterStatusPendingReview)

	employeeCtx := s.ContextFor("user_employee", types.UserRoleEmployee)

	// No referral relationship yet.
	_, err := s.service.GetAuditTrail(employeeCtx, l.ID)
	s.True(ierr.IsForbidden(err))

	s.GetStores().CouponRepo.AddReferral("user_owner", "user_employee")
	_, err = s.service.GetAuditTrail(employeeCtx, l.ID)
	s.NoError(err)
}

func (s *AuditServiceSuite) TestGetAuditTrailMissingLetter() {
	_, err := s.service.GetAuditTrail(s.GetContext(), "letter_missing")
	s.True(ierr.IsNotFound(err))
}
