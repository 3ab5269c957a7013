package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/lettercounsel/lettercounsel/internal/domain/webhookevent"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
)

// InMemoryWebhookEventStore implements webhookevent.Repository for tests.
// CheckAndRecord is first-wins under one mutex, matching the ON CONFLICT
// insert in the SQL repository.
type InMemoryWebhookEventStore struct {
	mu     sync.Mutex
	events map[string]*webhookevent.ProcessedEvent
}

func NewInMemoryWebhookEventStore() *InMemoryWebhookEventStore {
	return &InMemoryWebhookEventStore{
		events: make(map[string]*webhookevent.ProcessedEvent),
	}
}

func (s *InMemoryWebhookEventStore) CheckAndRecord(ctx context.Context, event *webhookevent.ProcessedEvent) (bool, *webhookevent.ProcessedEvent, error) {
	if event == nil {
		return false, nil, ierr.NewError("event cannot be nil").
			WithHint("Event cannot be nil").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.events[event.EventID]; ok {
		cp := *existing
		return false, &cp, nil
	}

	cp := *event
	if cp.ProcessedAt.IsZero() {
		cp.ProcessedAt = time.Now().UTC()
	}
	s.events[event.EventID] = &cp
	return true, nil, nil
}

func (s *InMemoryWebhookEventStore) Get(ctx context.Context, eventID string) (*webhookevent.ProcessedEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.events[eventID]
	if !ok {
		return nil, ierr.NewErrorf("event %s not found", eventID).
			WithHint("Webhook event not found").
			Mark(ierr.ErrNotFound)
	}
	cp := *existing
	return &cp, nil
}

// Forget drops the idempotency record so a test can simulate a rolled-back
// transaction before replaying the event.
func (s *InMemoryWebhookEventStore) Forget(eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, eventID)
}

func (s *InMemoryWebhookEventStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string]*webhookevent.ProcessedEvent)
}
