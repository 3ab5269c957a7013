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

type CommissionServiceSuite struct {
	testutil.BaseServiceTestSuite
	params  ServiceParams
	service CommissionService
}

func TestCommissionService(t *testing.T) {
	suite.Run(t, new(CommissionServiceSuite))
}

func (s *CommissionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestParams(&s.BaseServiceTestSuite)
	s.service = NewCommissionService(s.params)
}

func (s *CommissionServiceSuite) TestListMyCommissions() {
	ctx := s.ContextFor("user_employee", types.UserRoleEmployee)

	created, err := s.GetStores().CouponRepo.CreateCommission(ctx, &domainCoupon.Commission{
		ID:               types.GenerateUUIDWithPrefix(types.UUIDPrefixCommission),
		EmployeeID:       "user_employee",
		SubscriptionID:   "sub_1",
		CouponCode:       "EMP10",
		Amount:           decimal.NewFromFloat(9.90),
		Rate:             decimal.NewFromFloat(0.1),
		CommissionStatus: types.CommissionStatusPending,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	})
	s.NoError(err)
	s.True(created)

	commissions, err := s.service.ListMyCommissions(ctx)
	s.NoError(err)
	s.Len(commissions, 1)
	s.Equal("EMP10", commissions[0].CouponCode)
}

func (s *CommissionServiceSuite) TestListMyCommissionsRequiresCapability() {
	_, err := s.service.ListMyCommissions(s.GetContext())
	s.Error(err)
	s.True(ierr.IsForbidden(err))
}
