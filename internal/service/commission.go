package service

import (
	"context"

	domainCoupon "github.com/lettercounsel/lettercounsel/internal/domain/coupon"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

// CommissionService is the employee-facing view of referral earnings.
type CommissionService interface {
	ListMyCommissions(ctx context.Context) ([]*domainCoupon.Commission, error)
}

type commissionService struct {
	ServiceParams
}

func NewCommissionService(params ServiceParams) CommissionService {
	return &commissionService{ServiceParams: params}
}

func (s *commissionService) ListMyCommissions(ctx context.Context) ([]*domainCoupon.Commission, error) {
	if err := requireCapability(ctx, types.CapabilityViewCommissions); err != nil {
		return nil, err
	}
	return s.CouponRepo.ListCommissionsByEmployee(ctx, types.GetUserID(ctx))
}
