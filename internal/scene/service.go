package scene

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wichananm65/shop-for-outcomes/internal/logging"
	"github.com/wichananm65/shop-for-outcomes/internal/recommended"
)

var (
	ErrMissingGoal       = errors.New("goal is required")
	ErrRecommendFailed   = errors.New("fetching recommendations failed")
	ErrNoRecommendations = errors.New("no recommended products")
)

// Recommender fetches the recommendations a new scene is built from.
type Recommender interface {
	Recommend(ctx context.Context, goal string) (recommended.Response, error)
}

type Service struct {
	recommender Recommender
	searcher    Searcher
	repo        Repository
	ttl         time.Duration
}

func NewService(rec Recommender, searcher Searcher, repo Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Service{recommender: rec, searcher: searcher, repo: repo, ttl: ttl}
}

// Start fetches recommendations for goal and stores a new scene in the
// Unselected state. A blank goal fails before any fetch is made.
func (s *Service) Start(ctx context.Context, goal string) (*Scene, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, ErrMissingGoal
	}

	recs, err := s.recommender.Recommend(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecommendFailed, err)
	}
	if len(recs.Categories()) == 0 {
		return nil, ErrNoRecommendations
	}

	sc := New(uuid.NewString(), goal, recs, s.searcher)
	if err := s.repo.Save(sc); err != nil {
		return nil, err
	}
	logging.Info().Str("scene_id", sc.ID).Int("categories", len(recs.Categories())).Msg("scene started")
	return sc, nil
}

// Get returns a live scene and marks it active. Scenes idle for longer than
// the TTL are gone.
func (s *Service) Get(id string) (*Scene, error) {
	sc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if time.Since(sc.LastActive()) > s.ttl {
		_ = s.repo.Delete(id)
		return nil, ErrNotFound
	}
	sc.touch()
	return sc, nil
}

// Sweep drops scenes idle since before now minus the TTL.
func (s *Service) Sweep(now time.Time) int {
	return s.repo.DeleteIdle(now.Add(-s.ttl))
}

// RunJanitor sweeps idle scenes every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				logging.Debug().Int("removed", n).Msg("swept idle scenes")
			}
		}
	}
}
