package postgres

import (
	"context"
	"database/sql"

	domainCoupon "github.com/lettercounsel/lettercounsel/internal/domain/coupon"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/postgres"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

type couponRepository struct {
	db  postgres.IDB
	log *logger.Logger
}

func NewCouponRepository(db postgres.IDB, log *logger.Logger) domainCoupon.Repository {
	return &couponRepository{db: db, log: log}
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domainCoupon.Coupon, error) {
	var c domainCoupon.Coupon
	err := r.db.Querier(ctx).QueryRowContext(ctx, `
		SELECT code, employee_id, discount_percent, commission_rate, usage_count,
			status, created_at, updated_at, created_by, updated_by
		FROM coupons WHERE code = $1 AND status = $2`,
		code, types.StatusPublished,
	).Scan(
		&c.Code, &c.EmployeeID, &c.DiscountPercent, &c.CommissionRate, &c.UsageCount,
		&c.Status, &c.CreatedAt, &c.UpdatedAt, &c.CreatedBy, &c.UpdatedBy,
	)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("coupon not found").
			WithHint("Coupon code is invalid or no longer active").
			WithReportableDetails(map[string]interface{}{
				"coupon_code": code,
			}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get coupon").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *couponRepository) IncrementUsage(ctx context.Context, code string) error {
	res, err := r.db.Querier(ctx).ExecContext(ctx, `
		UPDATE coupons SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE code = $1 AND status = $2`,
		code, types.StatusPublished,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update coupon usage").
			WithReportableDetails(map[string]interface{}{
				"coupon_code": code,
			}).
			Mark(ierr.ErrDatabase)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update coupon usage").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("coupon not found").
			WithHint("Coupon code is invalid or no longer active").
			WithReportableDetails(map[string]interface{}{
				"coupon_code": code,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// CreateCommission leans on the unique index over subscription_id so replayed
// webhook deliveries cannot double-pay an employee.
func (r *couponRepository) CreateCommission(ctx context.Context, commission *domainCoupon.Commission) (bool, error) {
	res, err := r.db.Querier(ctx).ExecContext(ctx, `
		INSERT INTO commissions (id, employee_id, subscription_id, coupon_code,
			amount, rate, commission_status,
			status, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (subscription_id) DO NOTHING`,
		commission.ID, commission.EmployeeID, commission.SubscriptionID, commission.CouponCode,
		commission.Amount, commission.Rate, commission.CommissionStatus,
		commission.Status, commission.CreatedAt, commission.UpdatedAt,
		commission.CreatedBy, commission.UpdatedBy,
	)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to create commission").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": commission.SubscriptionID,
			}).
			Mark(ierr.ErrDatabase)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to create commission").
			Mark(ierr.ErrDatabase)
	}
	return affected == 1, nil
}

func (r *couponRepository) ListCommissionsByEmployee(ctx context.Context, employeeID string) ([]*domainCoupon.Commission, error) {
	rows, err := r.db.Querier(ctx).QueryContext(ctx, `
		SELECT id, employee_id, subscription_id, coupon_code,
			amount, rate, commission_status,
			status, created_at, updated_at, created_by, updated_by
		FROM commissions
		WHERE employee_id = $1 AND status != $2
		ORDER BY created_at DESC`,
		employeeID, types.StatusDeleted,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list commissions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var commissions []*domainCoupon.Commission
	for rows.Next() {
		var c domainCoupon.Commission
		err := rows.Scan(
			&c.ID, &c.EmployeeID, &c.SubscriptionID, &c.CouponCode,
			&c.Amount, &c.Rate, &c.CommissionStatus,
			&c.Status, &c.CreatedAt, &c.UpdatedAt, &c.CreatedBy, &c.UpdatedBy,
		)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan commission").
				Mark(ierr.ErrDatabase)
		}
		commissions = append(commissions, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list commissions").
			Mark(ierr.ErrDatabase)
	}
	return commissions, nil
}

func (r *couponRepository) HasReferralRelationship(ctx context.Context, employeeID, subscriberID string) (bool, error) {
	var exists bool
	err := r.db.Querier(ctx).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions s
			JOIN coupons c ON c.code = s.coupon_code
			WHERE s.user_id = $1 AND c.employee_id = $2
		)`,
		subscriberID, employeeID,
	).Scan(&exists)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to check referral relationship").
			Mark(ierr.ErrDatabase)
	}
	return exists, nil
}
