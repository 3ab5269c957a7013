package service

import (
	"context"
	"time"

	domainSub "github.com/lettercounsel/lettercounsel/internal/domain/subscription"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

// AllowanceSource records where a letter's credit came from.
type AllowanceSource string

const (
	AllowanceSourceUnlimited    AllowanceSource = "unlimited"
	AllowanceSourceSubscription AllowanceSource = "subscription"
	AllowanceSourceFreeTrial    AllowanceSource = "free_trial"
)

// Deduction is the outcome of a successful allowance deduction. It carries
// enough to compensate: only subscription credits are refundable, a consumed
// free trial stays consumed even when generation fails.
type Deduction struct {
	Source         AllowanceSource `json:"source"`
	SubscriptionID string          `json:"subscription_id,omitempty"`
	Refundable     bool            `json:"refundable"`
}

// Eligibility is the answer to "could this user generate a letter right
// now". It never consumes any balance.
type Eligibility struct {
	Eligible         bool            `json:"eligible"`
	Source           AllowanceSource `json:"source,omitempty"`
	LettersRemaining *int            `json:"letters_remaining,omitempty"`
}

// AllowanceService decides whether a user may generate a letter and performs
// the deduction. Deduct and CheckEligibility share one waterfall: unlimited
// bypass (role or subscription), then free trial, then the paid balance. The
// trial outranks a paid balance: the first letter is free even for a user
// who subscribed before submitting anything.
type AllowanceService interface {
	CheckEligibility(ctx context.Context, userID string) (*Eligibility, error)
	Deduct(ctx context.Context, userID string) (*Deduction, error)
	Refund(ctx context.Context, d *Deduction) error
}

type allowanceService struct {
	ServiceParams
}

func NewAllowanceService(params ServiceParams) AllowanceService {
	return &allowanceService{ServiceParams: params}
}

func (s *allowanceService) CheckEligibility(ctx context.Context, userID string) (*Eligibility, error) {
	if types.GetUserRole(ctx).HasCapability(types.CapabilityUnlimitedAllowance) {
		return &Eligibility{Eligible: true, Source: AllowanceSourceUnlimited}, nil
	}

	sub, err := s.activeSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub != nil && (sub.IsUnlimited || sub.LettersRemaining == nil) {
		return &Eligibility{
			Eligible: true,
			Source:   AllowanceSourceSubscription,
		}, nil
	}

	eligible, err := s.freeTrialAvailable(ctx, userID)
	if err != nil {
		return nil, err
	}
	if eligible {
		return &Eligibility{Eligible: true, Source: AllowanceSourceFreeTrial}, nil
	}

	if sub != nil && sub.HasAllowance() {
		return &Eligibility{
			Eligible:         true,
			Source:           AllowanceSourceSubscription,
			LettersRemaining: sub.LettersRemaining,
		}, nil
	}

	result := &Eligibility{Eligible: false}
	if sub != nil {
		result.LettersRemaining = sub.LettersRemaining
	}
	return result, nil
}

// Deduct consumes one credit. The subscription path is an atomic conditional
// decrement; the free-trial path is a history check, so callers that need it
// race-free take the per-user allowance lock first.
func (s *allowanceService) Deduct(ctx context.Context, userID string) (*Deduction, error) {
	if types.GetUserRole(ctx).HasCapability(types.CapabilityUnlimitedAllowance) {
		return &Deduction{Source: AllowanceSourceUnlimited, Refundable: false}, nil
	}

	sub, err := s.activeSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub != nil && (sub.IsUnlimited || sub.LettersRemaining == nil) {
		return &Deduction{
			Source:         AllowanceSourceSubscription,
			SubscriptionID: sub.ID,
			Refundable:     false,
		}, nil
	}

	available, err := s.freeTrialAvailable(ctx, userID)
	if err != nil {
		return nil, err
	}
	if available {
		s.Logger.Infow("free trial consumed", "user_id", userID)
		return &Deduction{Source: AllowanceSourceFreeTrial, Refundable: false}, nil
	}

	if sub != nil {
		deducted, err := s.SubRepo.DeductAllowance(ctx, sub.ID)
		if err != nil {
			return nil, err
		}
		if deducted {
			s.Logger.Infow("allowance deducted",
				"user_id", userID,
				"subscription_id", sub.ID,
			)
			return &Deduction{
				Source:         AllowanceSourceSubscription,
				SubscriptionID: sub.ID,
				Refundable:     true,
			}, nil
		}
	}

	return nil, ierr.NewError("no letter allowance available").
		WithHint("You have used all letters in your current plan").
		WithReportableDetails(map[string]interface{}{
			"user_id": userID,
		}).
		Mark(ierr.ErrInsufficientAllowance)
}

// Refund compensates a deduction after a downstream failure. Non-refundable
// deductions are a logged no-op.
func (s *allowanceService) Refund(ctx context.Context, d *Deduction) error {
	if d == nil {
		return nil
	}
	if !d.Refundable || d.SubscriptionID == "" {
		s.Logger.Debugw("skipping refund of non-refundable deduction",
			"source", d.Source,
		)
		return nil
	}
	if err := s.SubRepo.RefundAllowance(ctx, d.SubscriptionID, 1); err != nil {
		return err
	}
	s.Logger.Infow("allowance refunded",
		"subscription_id", d.SubscriptionID,
	)
	return nil
}

// activeSubscription loads the user's active subscription, resetting the
// balance first when the stored billing period has lapsed. Concurrent
// callers write the same fresh window, so the reset needs no lock.
func (s *allowanceService) activeSubscription(ctx context.Context, userID string) (*domainSub.Subscription, error) {
	sub, err := s.SubRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if sub.IsUnlimited || sub.LettersRemaining == nil ||
		sub.CurrentPeriodEnd.IsZero() || sub.CurrentPeriodEnd.After(time.Now().UTC()) {
		return sub, nil
	}

	plan, ok := types.PlanCatalog[sub.PlanType]
	if !ok {
		return sub, nil
	}
	start := time.Now().UTC()
	end := start.AddDate(0, 0, plan.PeriodDays)
	remaining := plan.LettersPerPeriod
	if err := s.SubRepo.RolloverPeriod(ctx, sub.ID, &remaining, start, end); err != nil {
		return nil, err
	}
	s.Logger.Infow("billing period rolled over",
		"subscription_id", sub.ID,
		"reason", types.TransactionReasonPeriodRollover,
		"letters_remaining", remaining,
	)

	sub.LettersRemaining = &remaining
	sub.CurrentPeriodStart = start
	sub.CurrentPeriodEnd = end
	return sub, nil
}

// freeTrialAvailable: the trial exists only while the user has never had a
// letter reach any non-failed status.
func (s *allowanceService) freeTrialAvailable(ctx context.Context, userID string) (bool, error) {
	count, err := s.LetterRepo.CountNonFailedByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
