package dto

import (
	"time"

	"github.com/lettercounsel/lettercounsel/internal/domain/letter"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

type GenerateLetterRequest struct {
	LetterType types.LetterType  `json:"letter_type" binding:"required"`
	IntakeData map[string]string `json:"intake_data" binding:"required"`
}

func (r *GenerateLetterRequest) Validate() error {
	if !r.LetterType.Valid() {
		return ierr.NewError("invalid letter type").
			WithHintf("Letter type %q is not supported", r.LetterType).
			Mark(ierr.ErrValidation)
	}
	if len(r.IntakeData) == 0 {
		return ierr.NewError("intake data is required").
			WithHint("Intake data is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// LetterResponse is the wire shape of a letter. Draft content is omitted for
// subscribers until the letter has passed review.
type LetterResponse struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	LetterType      types.LetterType   `json:"letter_type"`
	LetterStatus    types.LetterStatus `json:"letter_status"`
	IntakeData      map[string]string  `json:"intake_data,omitempty"`
	FinalContent    *string            `json:"final_content,omitempty"`
	RejectionReason *string            `json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time         `json:"approved_at,omitempty"`
	CompletedAt     *time.Time         `json:"completed_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`

	// Review fields, present only on admin reads.
	AIDraftContent *string `json:"ai_draft_content,omitempty"`
	ReviewNotes    *string `json:"review_notes,omitempty"`
}

// NewLetterResponse maps a letter for its owner.
func NewLetterResponse(l *letter.Letter) *LetterResponse {
	return &LetterResponse{
		ID:              l.ID,
		UserID:          l.UserID,
		LetterType:      l.LetterType,
		LetterStatus:    l.LetterStatus,
		IntakeData:      l.IntakeData,
		FinalContent:    l.FinalContent,
		RejectionReason: l.RejectionReason,
		ApprovedAt:      l.ApprovedAt,
		CompletedAt:     l.CompletedAt,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// NewAdminLetterResponse additionally exposes the draft and review notes.
func NewAdminLetterResponse(l *letter.Letter) *LetterResponse {
	resp := NewLetterResponse(l)
	resp.AIDraftContent = l.AIDraftContent
	resp.ReviewNotes = l.ReviewNotes
	return resp
}

type ListLettersResponse struct {
	Items []*LetterResponse `json:"items"`
	Total int               `json:"total"`
}

func NewListLettersResponse(letters []*letter.Letter, total int, admin bool) *ListLettersResponse {
	items := make([]*LetterResponse, 0, len(letters))
	for _, l := range letters {
		if admin {
			items = append(items, NewAdminLetterResponse(l))
		} else {
			items = append(items, NewLetterResponse(l))
		}
	}
	return &ListLettersResponse{Items: items, Total: total}
}
