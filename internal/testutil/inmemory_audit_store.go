package testutil

import (
	"context"
	"sort"

	"github.com/lettercounsel/lettercounsel/internal/domain/audit"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
)

// InMemoryAuditStore implements audit.Repository for tests. Append-only,
// like the SQL repository.
type InMemoryAuditStore struct {
	*InMemoryStore[*audit.AuditLog]
}

func NewInMemoryAuditStore() *InMemoryAuditStore {
	return &InMemoryAuditStore{
		InMemoryStore: NewInMemoryStore[*audit.AuditLog](),
	}
}

func (s *InMemoryAuditStore) Create(ctx context.Context, entry *audit.AuditLog) error {
	if entry == nil {
		return ierr.NewError("audit entry cannot be nil").
			WithHint("Audit entry cannot be nil").
			Mark(ierr.ErrValidation)
	}
	cp := *entry
	return s.InMemoryStore.Create(ctx, entry.ID, &cp)
}

func (s *InMemoryAuditStore) ListByLetter(ctx context.Context, letterID string) ([]*audit.AuditLog, error) {
	matched := make([]*audit.AuditLog, 0)
	for _, entry := range s.InMemoryStore.List(ctx) {
		if entry.LetterID == letterID {
			cp := *entry
			matched = append(matched, &cp)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}
