package service

import (
	"context"
	"fmt"

	"github.com/lettercounsel/lettercounsel/internal/aigen"
	domainAudit "github.com/lettercounsel/lettercounsel/internal/domain/audit"
	domainLetter "github.com/lettercounsel/lettercounsel/internal/domain/letter"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/lettercounsel/lettercounsel/internal/validator"
	"github.com/samber/lo"
)

// LetterService owns the subscriber-facing letter lifecycle: generation,
// resubmission, retry, deletion and reads.
type LetterService interface {
	GenerateLetter(ctx context.Context, req GenerateLetterRequest) (*domainLetter.Letter, error)
	ResubmitLetter(ctx context.Context, letterID string) (*domainLetter.Letter, error)
	RetryLetter(ctx context.Context, letterID string) (*domainLetter.Letter, error)
	DeleteLetter(ctx context.Context, letterID string) error
	GetLetter(ctx context.Context, letterID string) (*domainLetter.Letter, error)
	ListLetters(ctx context.Context, filter *types.LetterFilter) ([]*domainLetter.Letter, int, error)
}

type GenerateLetterRequest struct {
	LetterType types.LetterType  `json:"letter_type" validate:"required"`
	IntakeData map[string]string `json:"intake_data" validate:"required"`
}

type letterService struct {
	ServiceParams
	allowance AllowanceService
}

func NewLetterService(params ServiceParams, allowance AllowanceService) LetterService {
	return &letterService{
		ServiceParams: params,
		allowance:     allowance,
	}
}

// GenerateLetter runs the full generation flow: validate intake, deduct one
// credit, create the letter, call the drafting provider, and land the result
// in pending_review or failed. The deduction, letter row and audit entries
// commit together under a per-user lock; the provider call happens outside
// the transaction and compensates with a refund when it fails.
func (s *letterService) GenerateLetter(ctx context.Context, req GenerateLetterRequest) (*domainLetter.Letter, error) {
	if err := requireCapability(ctx, types.CapabilityGenerateLetters); err != nil {
		return nil, err
	}

	if err := validator.ValidateRequest(req); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Letter type and intake data are required").
			Mark(ierr.ErrValidation)
	}
	intake, err := validator.ValidateIntake(req.LetterType, req.IntakeData)
	if err != nil {
		return nil, err
	}

	userID := types.GetUserID(ctx)

	var (
		l         *domainLetter.Letter
		deduction *Deduction
	)
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		// The free-trial check is read-then-act, so two first letters racing
		// for one trial must serialize here.
		if err := s.DB.LockKey(ctx, types.LockRequest{
			Key: types.GenerateLockKey(types.LockScopeAllowance, map[string]interface{}{
				"user_id": userID,
			}),
		}); err != nil {
			return err
		}

		deduction, err = s.allowance.Deduct(ctx, userID)
		if err != nil {
			return err
		}

		l = domainLetter.New(ctx, req.LetterType, intake)
		if err := s.LetterRepo.Create(ctx, l); err != nil {
			return err
		}

		created := domainAudit.New(ctx, l.ID, types.AuditActionLetterCreated, userID)
		created.NewStatus = lo.ToPtr(types.LetterStatusGenerating)
		created.Metadata = map[string]interface{}{
			"letter_type":      l.LetterType,
			"allowance_source": deduction.Source,
		}
		if err := s.AuditRepo.Create(ctx, created); err != nil {
			return err
		}

		deducted := domainAudit.New(ctx, l.ID, types.AuditActionAllowanceDeducted, userID)
		deducted.Metadata = map[string]interface{}{
			"reason":          types.TransactionReasonGeneration,
			"source":          deduction.Source,
			"subscription_id": deduction.SubscriptionID,
			"refundable":      deduction.Refundable,
		}
		return s.AuditRepo.Create(ctx, deducted)
	})
	if err != nil {
		return nil, err
	}

	return s.runGeneration(ctx, l, deduction)
}

// runGeneration calls the provider for a letter already in generating and
// lands the outcome. On failure the letter goes to failed, the audit trail
// records why, and a refundable deduction is returned to the balance.
func (s *letterService) runGeneration(ctx context.Context, l *domainLetter.Letter, deduction *Deduction) (*domainLetter.Letter, error) {
	// A dropped client connection must not abort a generation in flight or
	// strand the compensating writes behind a dead context, so everything
	// past this point runs detached from the caller's cancellation. The
	// provider client enforces its own timeout.
	ctx = context.WithoutCancel(ctx)

	result, genErr := s.Generator.Generate(ctx, &aigen.Request{
		LetterType:   l.LetterType,
		IntakeData:   l.IntakeData,
		PriorContext: l.GenerationContext,
	})
	if genErr != nil {
		return nil, s.handleGenerationFailure(ctx, l, deduction, genErr)
	}

	updated, err := executeTransition(ctx, s.ServiceParams, transition{
		update: &domainLetter.StatusUpdate{
			LetterID:     l.ID,
			From:         types.LetterStatusGenerating,
			To:           types.LetterStatusPendingReview,
			ActorID:      types.GetUserID(ctx),
			DraftContent: lo.ToPtr(result.Content),
		},
		action: types.AuditActionStatusTransition,
		metadata: map[string]interface{}{
			"model": result.Model,
		},
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.ServiceParams, types.TemplateLetterPendingReview,
		[]types.NotificationRecipient{{AdminGroup: true}},
		map[string]interface{}{
			"letter_id":   updated.ID,
			"letter_type": updated.LetterType.String(),
		})
	return updated, nil
}

func (s *letterService) handleGenerationFailure(ctx context.Context, l *domainLetter.Letter, deduction *Deduction, genErr error) error {
	s.Logger.Errorw("letter generation failed",
		"letter_id", l.ID,
		"error", genErr,
	)
	s.Sentry.CaptureException(ctx, genErr)

	_, err := executeTransition(ctx, s.ServiceParams, transition{
		update: &domainLetter.StatusUpdate{
			LetterID: l.ID,
			From:     types.LetterStatusGenerating,
			To:       types.LetterStatusFailed,
			ActorID:  types.GetUserID(ctx),
		},
		action: types.AuditActionGenerationFailed,
		notes:  genErr.Error(),
	})
	if err != nil {
		s.Logger.Errorw("failed to mark letter as failed",
			"letter_id", l.ID,
			"error", err,
		)
	}

	if deduction != nil && deduction.Refundable {
		if err := s.allowance.Refund(ctx, deduction); err != nil {
			s.Logger.Errorw("failed to refund allowance after generation failure",
				"letter_id", l.ID,
				"subscription_id", deduction.SubscriptionID,
				"error", err,
			)
			s.Sentry.CaptureException(ctx, err)
		} else {
			entry := domainAudit.New(ctx, l.ID, types.AuditActionAllowanceRefunded, types.GetUserID(ctx))
			entry.Metadata = map[string]interface{}{
				"reason":          types.TransactionReasonGenerationRefund,
				"subscription_id": deduction.SubscriptionID,
			}
			if err := s.AuditRepo.Create(ctx, entry); err != nil {
				s.Logger.Errorw("failed to record refund audit entry",
					"letter_id", l.ID,
					"error", err,
				)
			}
		}
	}

	return genErr
}

// ResubmitLetter sends a rejected letter back through generation with the
// reviewer's feedback folded into the prompt. A resubmission pays like any
// generation; the deduction rolls back with the transaction if the letter
// slips out of rejected first.
func (s *letterService) ResubmitLetter(ctx context.Context, letterID string) (*domainLetter.Letter, error) {
	l, err := s.getOwned(ctx, letterID)
	if err != nil {
		return nil, err
	}
	if l.LetterStatus != types.LetterStatusRejected {
		return nil, ierr.NewError("only rejected letters can be resubmitted").
			WithHint("Only rejected letters can be resubmitted").
			WithReportableDetails(map[string]interface{}{
				"letter_id":      letterID,
				"current_status": l.LetterStatus,
			}).
			Mark(ierr.ErrInvalidTransition)
	}

	userID := types.GetUserID(ctx)
	genContext := buildResubmissionContext(l)

	var (
		updated   *domainLetter.Letter
		deduction *Deduction
	)
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockKey(ctx, types.LockRequest{
			Key: types.GenerateLockKey(types.LockScopeAllowance, map[string]interface{}{
				"user_id": userID,
			}),
		}); err != nil {
			return err
		}

		deduction, err = s.allowance.Deduct(ctx, userID)
		if err != nil {
			return err
		}

		updated, err = s.LetterRepo.UpdateStatus(ctx, &domainLetter.StatusUpdate{
			LetterID:          letterID,
			From:              types.LetterStatusRejected,
			To:                types.LetterStatusGenerating,
			ActorID:           userID,
			ClearRejection:    true,
			GenerationContext: lo.ToPtr(genContext),
		})
		if err != nil {
			return err
		}

		entry := domainAudit.New(ctx, letterID, types.AuditActionLetterResubmitted, userID)
		entry.OldStatus = lo.ToPtr(types.LetterStatusRejected)
		entry.NewStatus = lo.ToPtr(types.LetterStatusGenerating)
		entry.Metadata = map[string]interface{}{
			"allowance_source": deduction.Source,
		}
		if err := s.AuditRepo.Create(ctx, entry); err != nil {
			return err
		}

		deducted := domainAudit.New(ctx, letterID, types.AuditActionAllowanceDeducted, userID)
		deducted.Metadata = map[string]interface{}{
			"reason":          types.TransactionReasonGeneration,
			"source":          deduction.Source,
			"subscription_id": deduction.SubscriptionID,
			"refundable":      deduction.Refundable,
		}
		return s.AuditRepo.Create(ctx, deducted)
	})
	if err != nil {
		return nil, err
	}

	return s.runGeneration(ctx, updated, deduction)
}

// RetryLetter restarts a failed letter. A retry pays again: the failed
// attempt already refunded any refundable credit.
func (s *letterService) RetryLetter(ctx context.Context, letterID string) (*domainLetter.Letter, error) {
	l, err := s.getOwned(ctx, letterID)
	if err != nil {
		return nil, err
	}
	if l.LetterStatus != types.LetterStatusFailed {
		return nil, ierr.NewError("only failed letters can be retried").
			WithHint("Only failed letters can be retried").
			WithReportableDetails(map[string]interface{}{
				"letter_id":      letterID,
				"current_status": l.LetterStatus,
			}).
			Mark(ierr.ErrInvalidTransition)
	}

	userID := types.GetUserID(ctx)

	var deduction *Deduction
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockKey(ctx, types.LockRequest{
			Key: types.GenerateLockKey(types.LockScopeAllowance, map[string]interface{}{
				"user_id": userID,
			}),
		}); err != nil {
			return err
		}

		deduction, err = s.allowance.Deduct(ctx, userID)
		if err != nil {
			return err
		}

		if _, err := s.LetterRepo.UpdateStatus(ctx, &domainLetter.StatusUpdate{
			LetterID: letterID,
			From:     types.LetterStatusFailed,
			To:       types.LetterStatusDraft,
			ActorID:  userID,
		}); err != nil {
			return err
		}
		if _, err := s.LetterRepo.UpdateStatus(ctx, &domainLetter.StatusUpdate{
			LetterID: letterID,
			From:     types.LetterStatusDraft,
			To:       types.LetterStatusGenerating,
			ActorID:  userID,
		}); err != nil {
			return err
		}

		entry := domainAudit.New(ctx, letterID, types.AuditActionStatusTransition, userID)
		entry.OldStatus = lo.ToPtr(types.LetterStatusFailed)
		entry.NewStatus = lo.ToPtr(types.LetterStatusGenerating)
		entry.Notes = "retry after failed generation"
		entry.Metadata = map[string]interface{}{
			"allowance_source": deduction.Source,
		}
		if err := s.AuditRepo.Create(ctx, entry); err != nil {
			return err
		}

		deducted := domainAudit.New(ctx, letterID, types.AuditActionAllowanceDeducted, userID)
		deducted.Metadata = map[string]interface{}{
			"reason":          types.TransactionReasonGeneration,
			"source":          deduction.Source,
			"subscription_id": deduction.SubscriptionID,
			"refundable":      deduction.Refundable,
		}
		return s.AuditRepo.Create(ctx, deducted)
	})
	if err != nil {
		return nil, err
	}

	l.LetterStatus = types.LetterStatusGenerating
	return s.runGeneration(ctx, l, deduction)
}

// DeleteLetter removes an owned letter. The ownership and status conditions
// live in the delete statement itself, so a letter picked up by a reviewer
// between read and delete is not lost.
func (s *letterService) DeleteLetter(ctx context.Context, letterID string) error {
	userID := types.GetUserID(ctx)

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.LetterRepo.Delete(ctx, letterID, userID, types.DeletableLetterStatuses); err != nil {
			return err
		}
		entry := domainAudit.New(ctx, letterID, types.AuditActionLetterDeleted, userID)
		return s.AuditRepo.Create(ctx, entry)
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("letter deleted", "letter_id", letterID, "user_id", userID)
	return nil
}

func (s *letterService) GetLetter(ctx context.Context, letterID string) (*domainLetter.Letter, error) {
	l, err := s.LetterRepo.Get(ctx, letterID)
	if err != nil {
		return nil, err
	}
	if l.UserID != types.GetUserID(ctx) && !types.GetUserRole(ctx).IsAdmin() {
		return nil, letterAccessDenied(letterID)
	}
	return l, nil
}

func (s *letterService) ListLetters(ctx context.Context, filter *types.LetterFilter) ([]*domainLetter.Letter, int, error) {
	if filter == nil {
		filter = types.NewLetterFilter()
	}

	// Non-admins only ever see their own letters, whatever the filter says.
	if !types.GetUserRole(ctx).IsAdmin() {
		filter.UserID = types.GetUserID(ctx)
	}
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	letters, err := s.LetterRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.LetterRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return letters, count, nil
}

func (s *letterService) getOwned(ctx context.Context, letterID string) (*domainLetter.Letter, error) {
	l, err := s.LetterRepo.Get(ctx, letterID)
	if err != nil {
		return nil, err
	}
	if l.UserID != types.GetUserID(ctx) {
		return nil, letterAccessDenied(letterID)
	}
	return l, nil
}

func letterAccessDenied(letterID string) error {
	return ierr.NewError("letter belongs to another user").
		WithHint("You do not have access to this letter").
		WithReportableDetails(map[string]interface{}{
			"letter_id": letterID,
		}).
		Mark(ierr.ErrForbidden)
}

// buildResubmissionContext folds the rejected draft and the reviewer's
// feedback into the next generation prompt.
func buildResubmissionContext(l *domainLetter.Letter) string {
	context := ""
	if l.GenerationContext != nil {
		context = *l.GenerationContext + "\n\n"
	}
	draft := ""
	if l.AIDraftContent != nil {
		draft = *l.AIDraftContent
	}
	reason := ""
	if l.RejectionReason != nil {
		reason = *l.RejectionReason
	}
	return context + fmt.Sprintf("Previous draft:\n%s\n\nReviewer feedback:\n%s", draft, reason)
}
