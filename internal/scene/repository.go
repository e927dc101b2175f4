package scene

import (
	"errors"
	"sync"
	"time"

	"github.com/wichananm65/shop-for-outcomes/internal/metrics"
)

var ErrNotFound = errors.New("scene not found")

// Repository stores live scenes.
type Repository interface {
	Save(s *Scene) error
	GetByID(id string) (*Scene, error)
	Delete(id string) error
	// DeleteIdle removes scenes last used before cutoff and returns how many were removed.
	DeleteIdle(cutoff time.Time) int
	Len() int
}

// InMemoryRepository keeps scenes in process memory.
type InMemoryRepository struct {
	mu     sync.RWMutex
	scenes map[string]*Scene
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{scenes: make(map[string]*Scene)}
}

func (r *InMemoryRepository) Save(s *Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenes[s.ID] = s
	metrics.ActiveScenes.Set(float64(len(r.scenes)))
	return nil
}

func (r *InMemoryRepository) GetByID(id string) (*Scene, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scenes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (r *InMemoryRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.scenes[id]; !ok {
		return ErrNotFound
	}
	delete(r.scenes, id)
	metrics.ActiveScenes.Set(float64(len(r.scenes)))
	return nil
}

func (r *InMemoryRepository) DeleteIdle(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.scenes {
		if s.LastActive().Before(cutoff) {
			delete(r.scenes, id)
			removed++
		}
	}
	metrics.ActiveScenes.Set(float64(len(r.scenes)))
	return removed
}

func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.scenes)
}
