package recommended

import (
	"context"
	"errors"
	"fmt"

	"github.com/wichananm65/shop-for-outcomes/internal/logging"
	"github.com/wichananm65/shop-for-outcomes/internal/validation"
)

var ErrInvalidGoal = errors.New("goal is required")

// Provider fetches recommendations from the recommendation service.
type Provider interface {
	GetRecommendations(ctx context.Context, goal string) (Response, error)
}

// Service provides business logic for recommendations.
type Service struct {
	provider Provider
}

func NewService(p Provider) *Service {
	return &Service{provider: p}
}

type recommendInput struct {
	Goal string `validate:"notblank"`
}

// Recommend fetches recommendations for goal. No retry is attempted.
func (s *Service) Recommend(ctx context.Context, goal string) (Response, error) {
	if err := validation.Struct(recommendInput{Goal: goal}); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidGoal, err)
	}

	resp, err := s.provider.GetRecommendations(ctx, goal)
	if err != nil {
		logging.Warn().Err(err).Str("goal", goal).Msg("fetching recommendations failed")
		return Response{}, err
	}
	logging.Debug().Str("goal", goal).Int("products", len(resp.Products)).Msg("recommendations fetched")
	return resp, nil
}
