package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lettercounsel/lettercounsel/internal/domain/letter"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

// InMemoryLetterStore implements letter.Repository for tests with the same
// compare-and-swap semantics as the SQL repository.
type InMemoryLetterStore struct {
	*InMemoryStore[*letter.Letter]
	mu sync.Mutex
}

func NewInMemoryLetterStore() *InMemoryLetterStore {
	return &InMemoryLetterStore{
		InMemoryStore: NewInMemoryStore[*letter.Letter](),
	}
}

func (s *InMemoryLetterStore) Create(ctx context.Context, l *letter.Letter) error {
	if l == nil {
		return ierr.NewError("letter cannot be nil").
			WithHint("Letter cannot be nil").
			Mark(ierr.ErrValidation)
	}
	cp := *l
	return s.InMemoryStore.Create(ctx, l.ID, &cp)
}

func (s *InMemoryLetterStore) Get(ctx context.Context, id string) (*letter.Letter, error) {
	l, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewErrorf("letter %s not found", id).
			WithHint("Letter not found").
			Mark(ierr.ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (s *InMemoryLetterStore) List(ctx context.Context, filter *types.LetterFilter) ([]*letter.Letter, error) {
	matched := s.filtered(ctx, filter)

	asc := filter.GetOrder() == "asc"
	sort.Slice(matched, func(i, j int) bool {
		if asc {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	offset := filter.GetOffset()
	if offset >= len(matched) {
		return []*letter.Letter{}, nil
	}
	matched = matched[offset:]
	if limit := filter.GetLimit(); len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*letter.Letter, 0, len(matched))
	for _, l := range matched {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryLetterStore) Count(ctx context.Context, filter *types.LetterFilter) (int, error) {
	return len(s.filtered(ctx, filter)), nil
}

func (s *InMemoryLetterStore) filtered(ctx context.Context, filter *types.LetterFilter) []*letter.Letter {
	matched := make([]*letter.Letter, 0)
	for _, l := range s.InMemoryStore.List(ctx) {
		if filter.UserID != "" && l.UserID != filter.UserID {
			continue
		}
		if len(filter.Statuses) > 0 && !statusIn(l.LetterStatus, filter.Statuses) {
			continue
		}
		if len(filter.LetterTypes) > 0 && !typeIn(l.LetterType, filter.LetterTypes) {
			continue
		}
		matched = append(matched, l)
	}
	return matched
}

// UpdateStatus applies the transition only when the stored status still
// equals update.From, mirroring the conditional SQL statement.
func (s *InMemoryLetterStore) UpdateStatus(ctx context.Context, update *letter.StatusUpdate) (*letter.Letter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.InMemoryStore.Get(ctx, update.LetterID)
	if err != nil {
		return nil, ierr.NewErrorf("letter %s not found", update.LetterID).
			WithHint("Letter not found").
			Mark(ierr.ErrNotFound)
	}

	if l.LetterStatus != update.From {
		return nil, ierr.NewError("letter status changed concurrently").
			WithHint("The letter was modified by another request").
			WithReportableDetails(map[string]interface{}{
				"letter_id":       update.LetterID,
				"expected_status": update.From,
				"current_status":  l.LetterStatus,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	l.LetterStatus = update.To
	if update.DraftContent != nil {
		l.AIDraftContent = update.DraftContent
	}
	if update.FinalContent != nil {
		l.FinalContent = update.FinalContent
	}
	if update.RejectionReason != nil {
		l.RejectionReason = update.RejectionReason
	}
	if update.ClearRejection {
		l.RejectionReason = nil
	}
	if update.ReviewNotes != nil {
		l.ReviewNotes = update.ReviewNotes
	}
	if update.GenerationContext != nil {
		l.GenerationContext = update.GenerationContext
	}
	if update.ApprovedAt != nil {
		l.ApprovedAt = update.ApprovedAt
	}
	if update.CompletedAt != nil {
		l.CompletedAt = update.CompletedAt
	}
	l.UpdatedAt = time.Now().UTC()
	l.UpdatedBy = update.ActorID

	cp := *l
	return &cp, nil
}

func (s *InMemoryLetterStore) Delete(ctx context.Context, id string, userID string, allowed []types.LetterStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return ierr.NewErrorf("letter %s not found", id).
			WithHint("Letter not found").
			Mark(ierr.ErrNotFound)
	}
	if l.UserID != userID || !statusIn(l.LetterStatus, allowed) {
		return ierr.NewError("letter not deletable").
			WithHint("Letter does not exist, is not yours, or is not in a deletable status").
			WithReportableDetails(map[string]interface{}{
				"letter_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return s.InMemoryStore.Delete(ctx, id)
}

func (s *InMemoryLetterStore) CountNonFailedByUser(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, l := range s.InMemoryStore.List(ctx) {
		if l.UserID == userID && l.LetterStatus != types.LetterStatusFailed {
			count++
		}
	}
	return count, nil
}

func statusIn(status types.LetterStatus, allowed []types.LetterStatus) bool {
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}

func typeIn(lt types.LetterType, allowed []types.LetterType) bool {
	for _, t := range allowed {
		if t == lt {
			return true
		}
	}
	return false
}
