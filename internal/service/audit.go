package service

import (
	"context"

	domainAudit "github.com/lettercounsel/lettercounsel/internal/domain/audit"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

// AuditService exposes the read side of the audit trail. Entries are only
// ever written by the transition executor and the orchestrator.
type AuditService interface {
	GetAuditTrail(ctx context.Context, letterID string) ([]*domainAudit.AuditLog, error)
}

type auditService struct {
	ServiceParams
}

func NewAuditService(params ServiceParams) AuditService {
	return &auditService{ServiceParams: params}
}

// GetAuditTrail returns a letter's history, newest first. Readable by the
// letter's owner, by admins, and by an employee whose coupon referred the
// owner's subscription.
func (s *auditService) GetAuditTrail(ctx context.Context, letterID string) ([]*domainAudit.AuditLog, error) {
	l, err := s.LetterRepo.Get(ctx, letterID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.canViewTrail(ctx, l.UserID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, letterAccessDenied(letterID)
	}

	return s.AuditRepo.ListByLetter(ctx, letterID)
}

func (s *auditService) canViewTrail(ctx context.Context, ownerID string) (bool, error) {
	role := types.GetUserRole(ctx)
	actorID := types.GetUserID(ctx)

	if actorID == ownerID || role.IsAdmin() {
		return true, nil
	}
	if role == types.UserRoleEmployee {
		related, err := s.CouponRepo.HasReferralRelationship(ctx, actorID, ownerID)
		if err != nil {
			return false, ierr.WithError(err).
				WithHint("Failed to check referral relationship").
				Mark(ierr.ErrDatabase)
		}
		return related, nil
	}
	return false, nil
}
