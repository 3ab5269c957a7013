package letter

import (
	"context"
	"time"

	"github.com/lettercounsel/lettercounsel/internal/types"
)

// StatusUpdate describes a single compare-and-swap transition write. The
// update only succeeds when the stored status still equals From at write
// time; optional fields ride in the same statement so content and status
// can never disagree.
type StatusUpdate struct {
	LetterID string
	From     types.LetterStatus
	To       types.LetterStatus
	ActorID  string

	// DraftContent is stored on generating -> pending_review.
	DraftContent *string
	// FinalContent is stored on approval.
	FinalContent *string
	// RejectionReason is stored on rejection.
	RejectionReason *string
	// ClearRejection clears rejection_reason on resubmission.
	ClearRejection bool
	ReviewNotes    *string
	// GenerationContext is stored on resubmission.
	GenerationContext *string

	ApprovedAt  *time.Time
	CompletedAt *time.Time
}

// Repository defines the interface for letter persistence operations.
type Repository interface {
	// Create inserts a new letter row.
	Create(ctx context.Context, l *Letter) error

	// Get retrieves a letter by ID.
	Get(ctx context.Context, id string) (*Letter, error)

	// List retrieves letters with filters.
	List(ctx context.Context, filter *types.LetterFilter) ([]*Letter, error)

	// Count returns the count of letters matching the filter.
	Count(ctx context.Context, filter *types.LetterFilter) (int, error)

	// UpdateStatus executes the conditional transition write. It fails with
	// ErrNotFound when the letter does not exist and ErrVersionConflict when
	// the stored status no longer equals update.From.
	UpdateStatus(ctx context.Context, update *StatusUpdate) (*Letter, error)

	// Delete removes a letter only when it is owned by userID and currently
	// in one of the allowed statuses; the condition is part of the statement.
	Delete(ctx context.Context, id string, userID string, allowed []types.LetterStatus) error

	// CountNonFailedByUser counts the user's letters that are not failed.
	// Free-trial eligibility is derived from this count being zero.
	CountNonFailedByUser(ctx context.Context, userID string) (int, error)
}
