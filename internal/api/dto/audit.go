package dto

import (
	"time"

	"github.com/lettercounsel/lettercounsel/internal/domain/audit"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

type AuditEntryResponse struct {
	ID          string                 `json:"id"`
	LetterID    string                 `json:"letter_id"`
	Action      types.AuditAction      `json:"action"`
	OldStatus   *types.LetterStatus    `json:"old_status,omitempty"`
	NewStatus   *types.LetterStatus    `json:"new_status,omitempty"`
	PerformedBy string                 `json:"performed_by"`
	Notes       string                 `json:"notes,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

type AuditTrailResponse struct {
	Items []*AuditEntryResponse `json:"items"`
}

func NewAuditTrailResponse(entries []*audit.AuditLog) *AuditTrailResponse {
	items := make([]*AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, &AuditEntryResponse{
			ID:          e.ID,
			LetterID:    e.LetterID,
			Action:      e.Action,
			OldStatus:   e.OldStatus,
			NewStatus:   e.NewStatus,
			PerformedBy: e.PerformedBy,
			Notes:       e.Notes,
			Metadata:    e.Metadata,
			CreatedAt:   e.CreatedAt,
		})
	}
	return &AuditTrailResponse{Items: items}
}
