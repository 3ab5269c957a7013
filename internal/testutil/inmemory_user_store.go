package testutil

import (
	"context"

	"github.com/lettercounsel/lettercounsel/internal/domain/user"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
)

// InMemoryUserStore implements user.Repository for tests.
type InMemoryUserStore struct {
	*InMemoryStore[*user.User]
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		InMemoryStore: NewInMemoryStore[*user.User](),
	}
}

// AddUser seeds a user for tests.
func (s *InMemoryUserStore) AddUser(u *user.User) {
	cp := *u
	_ = s.InMemoryStore.Create(context.Background(), u.ID, &cp)
}

func (s *InMemoryUserStore) Get(ctx context.Context, id string) (*user.User, error) {
	u, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewErrorf("user %s not found", id).
			WithHint("User not found").
			Mark(ierr.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *InMemoryUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range s.InMemoryStore.List(ctx) {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ierr.NewErrorf("user with email %s not found", email).
		WithHint("User not found").
		Mark(ierr.ErrNotFound)
}
