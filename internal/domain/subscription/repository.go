package subscription

import (
	"context"
	"time"
)

// Repository defines the interface for subscription persistence operations.
// DeductAllowance and RefundAllowance are the only paths that may touch
// letters_remaining; both are single conditional statements so concurrent
// requests cannot overdraw the balance.
type Repository interface {
	// CreatePending inserts a pending subscription awaiting payment.
	CreatePending(ctx context.Context, sub *Subscription) error

	// Get retrieves a subscription by ID.
	Get(ctx context.Context, id string) (*Subscription, error)

	// GetActiveByUser retrieves the user's active subscription, ErrNotFound
	// when none exists.
	GetActiveByUser(ctx context.Context, userID string) (*Subscription, error)

	// GetByStripeSession retrieves the subscription created for a checkout
	// session.
	GetByStripeSession(ctx context.Context, sessionID string) (*Subscription, error)

	// DeductAllowance atomically decrements letters_remaining by one, only
	// when the subscription is active and the balance is positive. Returns
	// false without error when the condition did not hold.
	DeductAllowance(ctx context.Context, id string) (bool, error)

	// RefundAllowance atomically increments letters_remaining by count on an
	// active subscription with a finite balance. count must be positive.
	RefundAllowance(ctx context.Context, id string, count int) error

	// ActivatePending marks a pending subscription active and sets its
	// allowance and billing period in the same statement. Returns
	// ErrNotFound when no pending row matches.
	ActivatePending(ctx context.Context, id string, lettersRemaining *int, periodStart, periodEnd time.Time) (*Subscription, error)

	// RolloverPeriod resets the allowance and advances the billing period on
	// an active subscription.
	RolloverPeriod(ctx context.Context, id string, lettersRemaining *int, periodStart, periodEnd time.Time) error
}
