package coupon

import (
	"context"
)

// Repository defines coupon and commission persistence operations.
type Repository interface {
	// GetByCode retrieves an active coupon by code.
	GetByCode(ctx context.Context, code string) (*Coupon, error)

	// IncrementUsage records one use of the coupon.
	IncrementUsage(ctx context.Context, code string) error

	// CreateCommission inserts the commission unless one already exists for
	// the subscription; returns false when it was already recorded. The
	// uniqueness check and insert are a single atomic statement.
	CreateCommission(ctx context.Context, commission *Commission) (bool, error)

	// ListCommissionsByEmployee returns an employee's commissions, newest first.
	ListCommissionsByEmployee(ctx context.Context, employeeID string) ([]*Commission, error)

	// HasReferralRelationship reports whether the employee referred any of
	// the subscriber's subscriptions through one of their coupons. Used by
	// the audit trail access predicate.
	HasReferralRelationship(ctx context.Context, employeeID, subscriberID string) (bool, error)
}
