package audit

import (
	"context"
)

// Repository is the append-only audit store. There is deliberately no
// update or delete operation.
type Repository interface {
	// Create appends one entry.
	Create(ctx context.Context, entry *AuditLog) error

	// ListByLetter returns the letter's entries, newest first.
	ListByLetter(ctx context.Context, letterID string) ([]*AuditLog, error)
}
