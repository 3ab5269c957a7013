package dto

import (
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
)

type ApproveLetterRequest struct {
	// FinalContent replaces the draft when the reviewer edited it.
	FinalContent string `json:"final_content,omitempty"`
	ReviewNotes  string `json:"review_notes,omitempty"`
}

type RejectLetterRequest struct {
	RejectionReason string `json:"rejection_reason" binding:"required"`
	ReviewNotes     string `json:"review_notes,omitempty"`
}

func (r *RejectLetterRequest) Validate() error {
	if r.RejectionReason == "" {
		return ierr.NewError("rejection reason is required").
			WithHint("A rejection must explain what needs to change").
			Mark(ierr.ErrValidation)
	}
	return nil
}
