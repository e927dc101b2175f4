package results

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/wichananm65/shop-for-outcomes/internal/logging"
	"github.com/wichananm65/shop-for-outcomes/internal/metrics"
	"github.com/wichananm65/shop-for-outcomes/internal/recommended"
	"github.com/wichananm65/shop-for-outcomes/internal/validation"
)

var (
	ErrNoSnapshot      = errors.New("no results snapshot")
	ErrInvalidSnapshot = errors.New("results snapshot is malformed")
	ErrInvalidHandoff  = errors.New("invalid handoff")
)

type Service struct {
	repo  Repository
	grace time.Duration
	ttl   time.Duration
	now   func() time.Time
}

func NewService(repo Repository, grace, ttl time.Duration) *Service {
	return &Service{repo: repo, grace: grace, ttl: ttl, now: time.Now}
}

type publishInput struct {
	Recommendations string `validate:"notblank"`
	OriginalGoal    string `validate:"notblank"`
}

// Publish stores a snapshot for a later Consume and returns its id.
func (s *Service) Publish(ctx context.Context, goal, recommendationsJSON string) (string, error) {
	if err := validation.Struct(publishInput{Recommendations: recommendationsJSON, OriginalGoal: goal}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidHandoff, err)
	}
	snap := Snapshot{
		ID:              uuid.NewString(),
		Recommendations: recommendationsJSON,
		OriginalGoal:    goal,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.repo.Put(ctx, snap); err != nil {
		return "", err
	}
	return snap.ID, nil
}

// Consume reads a snapshot exactly once. If it is not there yet, Consume
// waits the grace period and looks again once, so a reader racing the writer
// still finds it. The snapshot is removed whether or not it is valid.
func (s *Service) Consume(ctx context.Context, id string) (View, error) {
	snap, err := s.repo.Take(ctx, id)
	if errors.Is(err, ErrNotFound) && s.grace > 0 {
		select {
		case <-ctx.Done():
			return View{}, ctx.Err()
		case <-time.After(s.grace):
		}
		snap, err = s.repo.Take(ctx, id)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.SnapshotsConsumed.WithLabelValues("missing").Inc()
			return View{}, ErrNoSnapshot
		}
		return View{}, err
	}

	view, err := parseSnapshot(snap)
	if err != nil {
		metrics.SnapshotsConsumed.WithLabelValues("invalid").Inc()
		logging.Warn().Err(err).Str("snapshot_id", id).Msg("discarding malformed results snapshot")
		return View{}, err
	}
	metrics.SnapshotsConsumed.WithLabelValues("ok").Inc()
	return view, nil
}

// rawRecommendations keeps products undecoded so its JSON type can be checked.
type rawRecommendations struct {
	VibeAnalysis string          `json:"vibe_analysis"`
	Products     json.RawMessage `json:"products"`
}

func parseSnapshot(snap Snapshot) (View, error) {
	if snap.Recommendations == "" || snap.OriginalGoal == "" {
		return View{}, ErrNoSnapshot
	}

	var raw rawRecommendations
	if err := json.Unmarshal([]byte(snap.Recommendations), &raw); err != nil {
		return View{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if raw.VibeAnalysis == "" {
		return View{}, fmt.Errorf("%w: missing vibe_analysis", ErrInvalidSnapshot)
	}
	trimmed := bytes.TrimSpace(raw.Products)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return View{}, fmt.Errorf("%w: products is not a list", ErrInvalidSnapshot)
	}

	var products []recommended.Product
	if err := json.Unmarshal(trimmed, &products); err != nil {
		return View{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	view := View{Goal: snap.OriginalGoal, VibeAnalysis: raw.VibeAnalysis, Products: make([]ProductCard, 0, len(products))}
	for i, p := range products {
		view.Products = append(view.Products, ProductCard{
			Index:     i,
			Name:      p.Name,
			Reason:    p.Reason,
			Category:  p.Category,
			BrowseURL: BrowseURL(i, p.Name),
		})
	}
	return view, nil
}

// RunJanitor removes snapshots nobody consumed within the TTL.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.repo.DeleteExpired(ctx, s.now().Add(-s.ttl))
			if err != nil {
				logging.Warn().Err(err).Msg("deleting expired snapshots failed")
				continue
			}
			if n > 0 {
				logging.Debug().Int("removed", n).Msg("deleted expired snapshots")
			}
		}
	}
}
