package service

import (
	"context"
	"time"

	domainAudit "github.com/lettercounsel/lettercounsel/internal/domain/audit"
	domainLetter "github.com/lettercounsel/lettercounsel/internal/domain/letter"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/samber/lo"
)

// ReviewService is the attorney-facing side of the letter lifecycle: claim,
// approve, reject, complete. Every status write in the system, including the
// orchestrator's, goes through the transition executor here so the adjacency
// check, the optimistic write and the audit entry can never drift apart.
type ReviewService interface {
	ListPendingReview(ctx context.Context, filter *types.LetterFilter) ([]*domainLetter.Letter, int, error)
	StartReview(ctx context.Context, letterID string) (*domainLetter.Letter, error)
	Approve(ctx context.Context, req ApproveLetterRequest) (*domainLetter.Letter, error)
	Reject(ctx context.Context, req RejectLetterRequest) (*domainLetter.Letter, error)
	MarkCompleted(ctx context.Context, letterID string) (*domainLetter.Letter, error)
}

type ApproveLetterRequest struct {
	LetterID string
	// FinalContent overrides the draft when the reviewer edited it; empty
	// means approve the draft as-is.
	FinalContent string
	ReviewNotes  string
}

type RejectLetterRequest struct {
	LetterID        string
	RejectionReason string
	ReviewNotes     string
}

type reviewService struct {
	ServiceParams
}

func NewReviewService(params ServiceParams) ReviewService {
	return &reviewService{ServiceParams: params}
}

// transition bundles one status change with its audit entry and the
// notification that goes out after it commits.
type transition struct {
	update   *domainLetter.StatusUpdate
	action   types.AuditAction
	notes    string
	metadata map[string]interface{}
}

// executeTransition validates the edge, then writes the status change and
// its audit entry in one transaction. The caller enqueues notifications
// after this returns, never inside it.
func executeTransition(ctx context.Context, p ServiceParams, t transition) (*domainLetter.Letter, error) {
	if !domainLetter.CanTransition(t.update.From, t.update.To) {
		return nil, ierr.NewErrorf("cannot transition letter from %s to %s", t.update.From, t.update.To).
			WithHint("This action is not valid for the letter's current status").
			WithReportableDetails(map[string]interface{}{
				"letter_id":   t.update.LetterID,
				"from_status": t.update.From,
				"to_status":   t.update.To,
			}).
			Mark(ierr.ErrInvalidTransition)
	}

	var updated *domainLetter.Letter
	err := p.DB.WithTx(ctx, func(ctx context.Context) error {
		l, err := p.LetterRepo.UpdateStatus(ctx, t.update)
		if err != nil {
			return err
		}

		entry := domainAudit.New(ctx, l.ID, t.action, t.update.ActorID)
		entry.OldStatus = lo.ToPtr(t.update.From)
		entry.NewStatus = lo.ToPtr(t.update.To)
		entry.Notes = t.notes
		entry.Metadata = t.metadata
		if err := p.AuditRepo.Create(ctx, entry); err != nil {
			return err
		}

		updated = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.Logger.Infow("letter transitioned",
		"letter_id", updated.ID,
		"from_status", t.update.From,
		"to_status", t.update.To,
		"actor", t.update.ActorID,
	)
	return updated, nil
}

// notify enqueues a notification message. Best-effort by contract.
func notify(ctx context.Context, p ServiceParams, template types.NotificationTemplate, recipients []types.NotificationRecipient, data map[string]interface{}) {
	p.Dispatcher.Enqueue(ctx, &types.NotificationMessage{
		ID:         types.GenerateUUIDWithPrefix(types.UUIDPrefixEvent),
		Template:   template,
		Recipients: recipients,
		Data:       data,
	})
}

func (s *reviewService) ListPendingReview(ctx context.Context, filter *types.LetterFilter) ([]*domainLetter.Letter, int, error) {
	if err := requireCapability(ctx, types.CapabilityReviewLetters); err != nil {
		return nil, 0, err
	}

	if filter == nil {
		filter = types.NewLetterFilter()
	}
	if len(filter.Statuses) == 0 {
		filter.Statuses = []types.LetterStatus{
			types.LetterStatusPendingReview,
			types.LetterStatusUnderReview,
		}
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

// StartReview claims a letter for review. The optimistic write makes two
// attorneys claiming the same letter resolve to exactly one winner.
func (s *reviewService) StartReview(ctx context.Context, letterID string) (*domainLetter.Letter, error) {
	if err := requireCapability(ctx, types.CapabilityReviewLetters); err != nil {
		return nil, err
	}

	return executeTransition(ctx, s.ServiceParams, transition{
		update: &domainLetter.StatusUpdate{
			LetterID: letterID,
			From:     types.LetterStatusPendingReview,
			To:       types.LetterStatusUnderReview,
			ActorID:  types.GetUserID(ctx),
		},
		action: types.AuditActionStatusTransition,
	})
}

func (s *reviewService) Approve(ctx context.Context, req ApproveLetterRequest) (*domainLetter.Letter, error) {
	if err := requireCapability(ctx, types.CapabilityReviewLetters); err != nil {
		return nil, err
	}

	l, err := s.LetterRepo.Get(ctx, req.LetterID)
	if err != nil {
		return nil, err
	}

	finalContent := req.FinalContent
	if finalContent == "" {
		if l.AIDraftContent == nil || *l.AIDraftContent == "" {
			return nil, ierr.NewError("letter has no draft to approve").
				WithHint("The letter has no draft content").
				Mark(ierr.ErrValidation)
		}
		finalContent = *l.AIDraftContent
	}

	update := &domainLetter.StatusUpdate{
		LetterID:     req.LetterID,
		From:         l.LetterStatus,
		To:           types.LetterStatusApproved,
		ActorID:      types.GetUserID(ctx),
		FinalContent: lo.ToPtr(finalContent),
		ApprovedAt:   lo.ToPtr(time.Now().UTC()),
	}
	if req.ReviewNotes != "" {
		update.ReviewNotes = lo.ToPtr(req.ReviewNotes)
	}

	updated, err := executeTransition(ctx, s.ServiceParams, transition{
		update: update,
		action: types.AuditActionStatusTransition,
		notes:  req.ReviewNotes,
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.ServiceParams, types.TemplateLetterApproved,
		[]types.NotificationRecipient{{UserID: updated.UserID}},
		map[string]interface{}{
			"letter_id":   updated.ID,
			"letter_type": updated.LetterType.String(),
		})
	return updated, nil
}

func (s *reviewService) Reject(ctx context.Context, req RejectLetterRequest) (*domainLetter.Letter, error) {
	if err := requireCapability(ctx, types.CapabilityReviewLetters); err != nil {
		return nil, err
	}
	if req.RejectionReason == "" {
		return nil, ierr.NewError("rejection reason is required").
			WithHint("A rejection must explain what needs to change").
			Mark(ierr.ErrValidation)
	}

	l, err := s.LetterRepo.Get(ctx, req.LetterID)
	if err != nil {
		return nil, err
	}

	update := &domainLetter.StatusUpdate{
		LetterID:        req.LetterID,
		From:            l.LetterStatus,
		To:              types.LetterStatusRejected,
		ActorID:         types.GetUserID(ctx),
		RejectionReason: lo.ToPtr(req.RejectionReason),
	}
	if req.ReviewNotes != "" {
		update.ReviewNotes = lo.ToPtr(req.ReviewNotes)
	}

	updated, err := executeTransition(ctx, s.ServiceParams, transition{
		update: update,
		action: types.AuditActionStatusTransition,
		notes:  req.RejectionReason,
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.ServiceParams, types.TemplateLetterRejected,
		[]types.NotificationRecipient{{UserID: updated.UserID}},
		map[string]interface{}{
			"letter_id":        updated.ID,
			"letter_type":      updated.LetterType.String(),
			"rejection_reason": req.RejectionReason,
		})
	return updated, nil
}

func (s *reviewService) MarkCompleted(ctx context.Context, letterID string) (*domainLetter.Letter, error) {
	if err := requireCapability(ctx, types.CapabilityCompleteLetters); err != nil {
		return nil, err
	}

	return executeTransition(ctx, s.ServiceParams, transition{
		update: &domainLetter.StatusUpdate{
			LetterID:    letterID,
			From:        types.LetterStatusApproved,
			To:          types.LetterStatusCompleted,
			ActorID:     types.GetUserID(ctx),
			CompletedAt: lo.ToPtr(time.Now().UTC()),
		},
		action: types.AuditActionStatusTransition,
	})
}

func requireCapability(ctx context.Context, c types.Capability) error {
	if !types.GetUserRole(ctx).HasCapability(c) {
		return ierr.NewError("insufficient permissions").
			WithHint("You are not allowed to perform this action").
			WithReportableDetails(map[string]interface{}{
				"required_capability": c,
			}).
			Mark(ierr.ErrForbidden)
	}
	return nil
}
