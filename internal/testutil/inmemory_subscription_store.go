package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/lettercounsel/lettercounsel/internal/domain/subscription"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository for tests.
// Allowance mutations happen under one mutex so concurrent deductions see
// the same all-or-nothing behavior as the conditional SQL statements.
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
	mu sync.Mutex
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

// AddSubscription seeds a subscription in any status for tests.
func (s *InMemorySubscriptionStore) AddSubscription(sub *subscription.Subscription) {
	cp := *sub
	_ = s.InMemoryStore.Create(context.Background(), sub.ID, &cp)
}

func (s *InMemorySubscriptionStore) CreatePending(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}
	cp := *sub
	return s.InMemoryStore.Create(ctx, sub.ID, &cp)
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewErrorf("subscription %s not found", id).
			WithHint("Subscription not found").
			Mark(ierr.ErrNotFound)
	}
	cp := *sub
	return &cp, nil
}

func (s *InMemorySubscriptionStore) GetActiveByUser(ctx context.Context, userID string) (*subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.InMemoryStore.List(ctx) {
		if sub.UserID == userID && sub.SubscriptionStatus == types.SubscriptionStatusActive {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, ierr.NewError("no active subscription").
		WithHint("No active subscription found for user").
		Mark(ierr.ErrNotFound)
}

func (s *InMemorySubscriptionStore) GetByStripeSession(ctx context.Context, sessionID string) (*subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.InMemoryStore.List(ctx) {
		if sub.StripeSessionID != nil && *sub.StripeSessionID == sessionID {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, ierr.NewErrorf("no subscription for session %s", sessionID).
		WithHint("Subscription not found for checkout session").
		Mark(ierr.ErrNotFound)
}

func (s *InMemorySubscriptionStore) DeductAllowance(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return false, nil
	}
	if sub.SubscriptionStatus != types.SubscriptionStatusActive {
		return false, nil
	}
	if sub.LettersRemaining == nil || *sub.LettersRemaining <= 0 {
		return false, nil
	}

	remaining := *sub.LettersRemaining - 1
	sub.LettersRemaining = &remaining
	sub.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *InMemorySubscriptionStore) RefundAllowance(ctx context.Context, id string, count int) error {
	if count <= 0 {
		return ierr.NewError("refund count must be positive").
			WithHint("Refund count must be positive").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return ierr.NewErrorf("subscription %s not found", id).
			WithHint("Subscription not found").
			Mark(ierr.ErrNotFound)
	}
	if sub.SubscriptionStatus != types.SubscriptionStatusActive || sub.LettersRemaining == nil {
		return ierr.NewError("subscription not refundable").
			WithHint("Refunds apply only to active subscriptions with a finite allowance").
			Mark(ierr.ErrNotFound)
	}

	remaining := *sub.LettersRemaining + count
	sub.LettersRemaining = &remaining
	sub.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemorySubscriptionStore) ActivatePending(ctx context.Context, id string, lettersRemaining *int, periodStart, periodEnd time.Time) (*subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || sub.SubscriptionStatus != types.SubscriptionStatusPending {
		return nil, ierr.NewErrorf("no pending subscription %s", id).
			WithHint("Subscription is not pending activation").
			Mark(ierr.ErrNotFound)
	}

	sub.SubscriptionStatus = types.SubscriptionStatusActive
	if lettersRemaining != nil {
		remaining := *lettersRemaining
		sub.LettersRemaining = &remaining
		sub.IsUnlimited = false
	} else {
		sub.LettersRemaining = nil
		sub.IsUnlimited = true
	}
	sub.CurrentPeriodStart = periodStart
	sub.CurrentPeriodEnd = periodEnd
	sub.UpdatedAt = time.Now().UTC()

	cp := *sub
	return &cp, nil
}

func (s *InMemorySubscriptionStore) RolloverPeriod(ctx context.Context, id string, lettersRemaining *int, periodStart, periodEnd time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || sub.SubscriptionStatus != types.SubscriptionStatusActive {
		return ierr.NewErrorf("no active subscription %s", id).
			WithHint("Subscription is not active").
			Mark(ierr.ErrNotFound)
	}

	if lettersRemaining != nil {
		remaining := *lettersRemaining
		sub.LettersRemaining = &remaining
	}
	sub.CurrentPeriodStart = periodStart
	sub.CurrentPeriodEnd = periodEnd
	sub.UpdatedAt = time.Now().UTC()
	return nil
}
