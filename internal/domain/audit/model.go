package audit

import (
	"context"

	"github.com/lettercounsel/lettercounsel/internal/types"
)

// AuditLog is one immutable fact about a letter: a state transition or an
// administrative action. Entries are append-only; the repository exposes no
// update or delete.
type AuditLog struct {
	ID       string `json:"id"`
	LetterID string `json:"letter_id"`

	Action    types.AuditAction   `json:"action"`
	OldStatus *types.LetterStatus `json:"old_status,omitempty"`
	NewStatus *types.LetterStatus `json:"new_status,omitempty"`

	// PerformedBy retains the actor so the read path's access predicate
	// (owner, admin, related employee) stays checkable.
	PerformedBy string                 `json:"performed_by"`
	Notes       string                 `json:"notes,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`

	types.BaseModel
}

// New returns an audit entry for a letter action performed by actorID.
func New(ctx context.Context, letterID string, action types.AuditAction, actorID string) *AuditLog {
	return &AuditLog{
		ID:          types.GenerateUUIDWithPrefix(types.UUIDPrefixAuditLog),
		LetterID:    letterID,
		Action:      action,
		PerformedBy: actorID,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}
