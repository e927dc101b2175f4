package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/wichananm65/shop-for-outcomes/internal/metrics"
	"github.com/wichananm65/shop-for-outcomes/internal/validation"
)

// DefaultLimit is the number of results shown for a category.
const DefaultLimit = 6

var ErrInvalidSearch = errors.New("invalid search")

// Searcher queries the product search service.
type Searcher interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]SearchProduct, error)
}

type Service struct {
	searcher Searcher
	policy   RefreshPolicy
}

func NewService(s Searcher) *Service {
	return &Service{searcher: s, policy: DefaultRefreshPolicy}
}

// WithPolicy returns a copy of the service using a different refresh policy.
func (s *Service) WithPolicy(p RefreshPolicy) *Service {
	return &Service{searcher: s.searcher, policy: p}
}

type searchInput struct {
	Query string `validate:"notblank"`
	Limit int    `validate:"min=1,max=50"`
}

// Search returns at most limit products for query, in service order.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]SearchProduct, error) {
	if err := validation.Struct(searchInput{Query: query, Limit: limit}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSearch, err)
	}
	found, err := s.searcher.SearchProducts(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

// Refresh runs RefreshUnseen for query with the service policy.
func (s *Service) Refresh(ctx context.Context, query string, shown URLSet) (RefreshResult, error) {
	res, err := RefreshUnseen(ctx, func(ctx context.Context, limit int) ([]SearchProduct, error) {
		return s.Search(ctx, query, limit)
	}, shown, s.policy)
	if err != nil {
		return res, err
	}
	metrics.RefreshAttempts.Observe(float64(res.Attempts))
	if res.Fallback {
		metrics.RefreshFallbacks.Inc()
	}
	return res, nil
}
