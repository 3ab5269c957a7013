package aigen

import (
	"context"

	"github.com/lettercounsel/lettercounsel/internal/types"
)

// Request carries everything the drafting provider needs to produce a letter.
type Request struct {
	LetterType types.LetterType  `json:"letter_type"`
	IntakeData map[string]string `json:"intake_data"`

	// PriorContext carries rejection feedback and earlier drafts on
	// resubmission so the provider can improve rather than start over.
	PriorContext *string `json:"prior_context,omitempty"`
}

// Result is a successful draft. Content is guaranteed non-empty.
type Result struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

// Generator produces letter drafts. Implementations must respect the
// context deadline and never return an empty-content result without error.
type Generator interface {
	Generate(ctx context.Context, req *Request) (*Result, error)
}
