package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/lettercounsel/lettercounsel/internal/domain/coupon"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
)

// InMemoryCouponStore implements coupon.Repository for tests. Commission
// creation is unique per subscription, like the SQL unique index.
type InMemoryCouponStore struct {
	mu                        sync.Mutex
	coupons                   map[string]*coupon.Coupon
	commissions               map[string]*coupon.Commission
	commissionsBySubscription map[string]string

	// subscriberReferrals maps subscriber id to the employee ids whose
	// coupons they subscribed with, standing in for the join the SQL
	// repository performs.
	subscriberReferrals map[string]map[string]bool
}

func NewInMemoryCouponStore() *InMemoryCouponStore {
	return &InMemoryCouponStore{
		coupons:                   make(map[string]*coupon.Coupon),
		commissions:               make(map[string]*coupon.Commission),
		commissionsBySubscription: make(map[string]string),
		subscriberReferrals:       make(map[string]map[string]bool),
	}
}

// AddCoupon seeds a coupon for tests.
func (s *InMemoryCouponStore) AddCoupon(c *coupon.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.coupons[c.Code] = &cp
}

// AddReferral seeds a referral relationship for tests.
func (s *InMemoryCouponStore) AddReferral(subscriberID, employeeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscriberReferrals[subscriberID] == nil {
		s.subscriberReferrals[subscriberID] = make(map[string]bool)
	}
	s.subscriberReferrals[subscriberID][employeeID] = true
}

func (s *InMemoryCouponStore) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.coupons[code]
	if !ok {
		return nil, ierr.NewErrorf("coupon %s not found", code).
			WithHint("Coupon code is not valid").
			Mark(ierr.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryCouponStore) IncrementUsage(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.coupons[code]
	if !ok {
		return ierr.NewErrorf("coupon %s not found", code).
			WithHint("Coupon code is not valid").
			Mark(ierr.ErrNotFound)
	}
	c.UsageCount++
	return nil
}

func (s *InMemoryCouponStore) CreateCommission(ctx context.Context, commission *coupon.Commission) (bool, error) {
	if commission == nil {
		return false, ierr.NewError("commission cannot be nil").
			WithHint("Commission cannot be nil").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.commissionsBySubscription[commission.SubscriptionID]; exists {
		return false, nil
	}

	cp := *commission
	s.commissions[commission.ID] = &cp
	s.commissionsBySubscription[commission.SubscriptionID] = commission.ID
	return true, nil
}

func (s *InMemoryCouponStore) ListCommissionsByEmployee(ctx context.Context, employeeID string) ([]*coupon.Commission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*coupon.Commission, 0)
	for _, c := range s.commissions {
		if c.EmployeeID == employeeID {
			cp := *c
			matched = append(matched, &cp)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (s *InMemoryCouponStore) HasReferralRelationship(ctx context.Context, employeeID, subscriberID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscriberReferrals[subscriberID][employeeID], nil
}

func (s *InMemoryCouponStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupons = make(map[string]*coupon.Coupon)
	s.commissions = make(map[string]*coupon.Commission)
	s.commissionsBySubscription = make(map[string]string)
	s.subscriberReferrals = make(map[string]map[string]bool)
}
