package testutil

import (
	"context"
	"sync"

	"github.com/lettercounsel/lettercounsel/internal/postgres"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

// InMemoryDB satisfies postgres.IDB for service tests backed by in-memory
// stores. WithTx runs the function directly; the stores apply each write
// atomically on their own, so tests exercise the same conditional-write
// semantics without a database. LockKey serializes callers per key the way
// an advisory lock would, which the trial-eligibility path depends on.
type InMemoryDB struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewInMemoryDB() *InMemoryDB {
	return &InMemoryDB{
		locks: make(map[string]*sync.Mutex),
	}
}

type heldLocksKey struct{}

func (d *InMemoryDB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(heldLocksKey{}) != nil {
		return fn(ctx)
	}

	held := &[]*sync.Mutex{}
	err := fn(context.WithValue(ctx, heldLocksKey{}, held))
	for i := len(*held) - 1; i >= 0; i-- {
		(*held)[i].Unlock()
	}
	return err
}

func (d *InMemoryDB) Querier(ctx context.Context) postgres.Querier {
	panic("in-memory db has no querier; wire an in-memory repository instead")
}

// LockKey blocks until the key's mutex is acquired and holds it until the
// surrounding WithTx returns, mirroring pg_advisory_xact_lock.
func (d *InMemoryDB) LockKey(ctx context.Context, req types.LockRequest) error {
	held, ok := ctx.Value(heldLocksKey{}).(*[]*sync.Mutex)
	if !ok {
		panic("LockKey must be called inside WithTx")
	}

	d.mu.Lock()
	lock, exists := d.locks[req.Key]
	if !exists {
		lock = &sync.Mutex{}
		d.locks[req.Key] = lock
	}
	d.mu.Unlock()

	lock.Lock()
	*held = append(*held, lock)
	return nil
}
