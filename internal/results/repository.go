package results

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("snapshot not found")

// Repository stores snapshots until they are taken.
type Repository interface {
	Put(ctx context.Context, s Snapshot) error
	// Take returns the snapshot and removes it in one step.
	Take(ctx context.Context, id string) (Snapshot, error)
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

// InMemoryRepository is used when no database is configured and in tests.
type InMemoryRepository struct {
	mu        sync.Mutex
	snapshots map[string]Snapshot
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{snapshots: make(map[string]Snapshot)}
}

func (r *InMemoryRepository) Put(_ context.Context, s Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[s.ID] = s
	return nil
}

func (r *InMemoryRepository) Take(_ context.Context, id string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.snapshots[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	delete(r.snapshots, id)
	return s, nil
}

func (r *InMemoryRepository) DeleteExpired(_ context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.snapshots {
		if s.CreatedAt.Before(before) {
			delete(r.snapshots, id)
			n++
		}
	}
	return n, nil
}
