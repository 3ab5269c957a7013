package letter

import (
	"context"
	"time"

	"github.com/lettercounsel/lettercounsel/internal/types"
)

// Letter is one legal-letter request and its artifact. IntakeData is
// immutable once the letter has been submitted for generation; Status is
// mutated only through the review service's transition executor.
type Letter struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	LetterType   types.LetterType   `json:"letter_type"`
	LetterStatus types.LetterStatus `json:"letter_status"`

	IntakeData map[string]string `json:"intake_data"`

	AIDraftContent  *string `json:"ai_draft_content,omitempty"`
	FinalContent    *string `json:"final_content,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	ReviewNotes     *string `json:"review_notes,omitempty"`

	// GenerationContext carries reviewer feedback into a resubmission's
	// generation prompt.
	GenerationContext *string `json:"generation_context,omitempty"`

	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	types.BaseModel
}

// New returns a letter in generating status, owned by the acting user.
func New(ctx context.Context, letterType types.LetterType, intake map[string]string) *Letter {
	return &Letter{
		ID:           types.GenerateUUIDWithPrefix(types.UUIDPrefixLetter),
		UserID:       types.GetUserID(ctx),
		LetterType:   letterType,
		LetterStatus: types.LetterStatusGenerating,
		IntakeData:   intake,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}
