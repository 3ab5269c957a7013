package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domainSub "github.com/lettercounsel/lettercounsel/internal/domain/subscription"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/postgres"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

type subscriptionRepository struct {
	db  postgres.IDB
	log *logger.Logger
}

func NewSubscriptionRepository(db postgres.IDB, log *logger.Logger) domainSub.Repository {
	return &subscriptionRepository{db: db, log: log}
}

const subscriptionColumns = `id, user_id, plan_type, subscription_status,
	letters_remaining, is_unlimited, current_period_start, current_period_end,
	stripe_session_id, coupon_code, price,
	status, created_at, updated_at, created_by, updated_by`

func (r *subscriptionRepository) CreatePending(ctx context.Context, sub *domainSub.Subscription) error {
	_, err := r.db.Querier(ctx).ExecContext(ctx, `
		INSERT INTO subscriptions (id, user_id, plan_type, subscription_status,
			letters_remaining, is_unlimited, current_period_start, current_period_end,
			stripe_session_id, coupon_code, price,
			status, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		sub.ID, sub.UserID, sub.PlanType, sub.SubscriptionStatus,
		sub.LettersRemaining, sub.IsUnlimited, sub.CurrentPeriodStart, sub.CurrentPeriodEnd,
		sub.StripeSessionID, sub.CouponCode, sub.Price,
		sub.Status, sub.CreatedAt, sub.UpdatedAt, sub.CreatedBy, sub.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": sub.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*domainSub.Subscription, error) {
	row := r.db.Querier(ctx).QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM subscriptions WHERE id = $1`, subscriptionColumns), id)
	return r.scanOne(row, map[string]interface{}{"subscription_id": id})
}

func (r *subscriptionRepository) GetActiveByUser(ctx context.Context, userID string) (*domainSub.Subscription, error) {
	row := r.db.Querier(ctx).QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM subscriptions
			WHERE user_id = $1 AND subscription_status = $2
			ORDER BY created_at DESC LIMIT 1`, subscriptionColumns),
		userID, types.SubscriptionStatusActive)
	return r.scanOne(row, map[string]interface{}{"user_id": userID})
}

func (r *subscriptionRepository) GetByStripeSession(ctx context.Context, sessionID string) (*domainSub.Subscription, error) {
	row := r.db.Querier(ctx).QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM subscriptions WHERE stripe_session_id = $1`, subscriptionColumns),
		sessionID)
	return r.scanOne(row, map[string]interface{}{"stripe_session_id": sessionID})
}

// DeductAllowance is the check-and-deduct primitive: the balance check and
// the decrement are one statement, so two concurrent calls against a
// one-credit balance cannot both succeed.
func (r *subscriptionRepository) DeductAllowance(ctx context.Context, id string) (bool, error) {
	res, err := r.db.Querier(ctx).ExecContext(ctx, `
		UPDATE subscriptions
		SET letters_remaining = letters_remaining - 1, updated_at = NOW()
		WHERE id = $1
		  AND subscription_status = $2
		  AND letters_remaining IS NOT NULL
		  AND letters_remaining > 0`,
		id, types.SubscriptionStatusActive,
	)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to deduct allowance").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": id,
			}).
			Mark(ierr.ErrDatabase)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to deduct allowance").
			Mark(ierr.ErrDatabase)
	}
	return affected == 1, nil
}

func (r *subscriptionRepository) RefundAllowance(ctx context.Context, id string, count int) error {
	if count < 1 {
		return ierr.NewError("refund count must be positive").
			WithHint("Refund count must be a positive integer").
			WithReportableDetails(map[string]interface{}{
				"count": count,
			}).
			Mark(ierr.ErrValidation)
	}

	res, err := r.db.Querier(ctx).ExecContext(ctx, `
		UPDATE subscriptions
		SET letters_remaining = letters_remaining + $2, updated_at = NOW()
		WHERE id = $1
		  AND subscription_status = $3
		  AND letters_remaining IS NOT NULL`,
		id, count, types.SubscriptionStatusActive,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to refund allowance").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": id,
			}).
			Mark(ierr.ErrDatabase)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to refund allowance").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("no refundable subscription").
			WithHint("Subscription is not active or has an unlimited balance").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) ActivatePending(ctx context.Context, id string, lettersRemaining *int, periodStart, periodEnd time.Time) (*domainSub.Subscription, error) {
	row := r.db.Querier(ctx).QueryRowContext(ctx, fmt.Sprintf(`
		UPDATE subscriptions
		SET subscription_status = $2,
		    letters_remaining = $3,
		    current_period_start = $4,
		    current_period_end = $5,
		    updated_at = NOW()
		WHERE id = $1 AND subscription_status = $6
		RETURNING %s`, subscriptionColumns),
		id, types.SubscriptionStatusActive, lettersRemaining, periodStart, periodEnd,
		types.SubscriptionStatusPending,
	)
	sub, err := r.scanOne(row, map[string]interface{}{"subscription_id": id})
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("no pending subscription to activate").
				WithHint("Subscription is missing or already activated").
				WithReportableDetails(map[string]interface{}{
					"subscription_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}
	return sub, nil
}

func (r *subscriptionRepository) RolloverPeriod(ctx context.Context, id string, lettersRemaining *int, periodStart, periodEnd time.Time) error {
	res, err := r.db.Querier(ctx).ExecContext(ctx, `
		UPDATE subscriptions
		SET letters_remaining = $2,
		    current_period_start = $3,
		    current_period_end = $4,
		    updated_at = NOW()
		WHERE id = $1 AND subscription_status = $5`,
		id, lettersRemaining, periodStart, periodEnd, types.SubscriptionStatusActive,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to roll over billing period").
			Mark(ierr.ErrDatabase)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to roll over billing period").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("subscription not active").
			WithHint("Only active subscriptions roll over").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) scanOne(row *sql.Row, details map[string]interface{}) (*domainSub.Subscription, error) {
	var (
		sub              domainSub.Subscription
		lettersRemaining sql.NullInt64
		sessionID        sql.NullString
		couponCode       sql.NullString
	)

	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.PlanType, &sub.SubscriptionStatus,
		&lettersRemaining, &sub.IsUnlimited, &sub.CurrentPeriodStart, &sub.CurrentPeriodEnd,
		&sessionID, &couponCode, &sub.Price,
		&sub.Status, &sub.CreatedAt, &sub.UpdatedAt, &sub.CreatedBy, &sub.UpdatedBy,
	)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}

	if lettersRemaining.Valid {
		v := int(lettersRemaining.Int64)
		sub.LettersRemaining = &v
	}
	sub.StripeSessionID = nullString(sessionID)
	sub.CouponCode = nullString(couponCode)
	return &sub, nil
}
