package scene

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/wichananm65/shop-for-outcomes/internal/logging"
	"github.com/wichananm65/shop-for-outcomes/internal/metrics"
	"github.com/wichananm65/shop-for-outcomes/internal/product"
	"github.com/wichananm65/shop-for-outcomes/internal/recommended"
)

var (
	ErrInvalidCategory = errors.New("category index out of range")
	ErrNotSelected     = errors.New("no category selected")
	ErrRefreshInFlight = errors.New("refresh already in progress")
	ErrUnknownProduct  = errors.New("product is not in the current results")
)

// Searcher runs category searches for a scene.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]product.SearchProduct, error)
	Refresh(ctx context.Context, query string, shown product.URLSet) (product.RefreshResult, error)
}

// Scene is one visitor's view of the recommendations for a goal.
//
// Every transition bumps generation. A search started under an older
// generation is discarded when it returns, so a slow response can never
// overwrite the results of a newer selection.
type Scene struct {
	ID   string
	Goal string

	recs     recommended.Response
	searcher Searcher
	log      zerolog.Logger

	mu         sync.Mutex
	state      State
	results    []product.SearchProduct
	loading    bool
	refreshing bool
	shown      product.URLSet
	shownFor   int
	generation uint64
	lastActive time.Time
}

func New(id, goal string, recs recommended.Response, searcher Searcher) *Scene {
	return &Scene{
		ID:         id,
		Goal:       goal,
		recs:       recs,
		searcher:   searcher,
		log:        logging.With("scene").With().Str("scene_id", id).Logger(),
		state:      Unselected{},
		shown:      product.NewURLSet(),
		shownFor:   -1,
		lastActive: time.Now(),
	}
}

// State returns the current selection state.
func (s *Scene) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActive reports when the scene was last used.
func (s *Scene) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Select handles a click on category index. Clicking the selected category
// again returns to Unselected. Otherwise the category becomes selected and
// its products are searched.
func (s *Scene) Select(ctx context.Context, index int) (View, error) {
	s.mu.Lock()
	categories := s.recs.Categories()
	if index < 0 || index >= len(categories) {
		s.mu.Unlock()
		return View{}, ErrInvalidCategory
	}
	if cur, ok := selectedIndex(s.state); ok && cur == index {
		s.resetLocked()
		defer s.mu.Unlock()
		return s.viewLocked(), nil
	}

	s.state = Selected{Index: index}
	s.results = nil
	s.loading = true
	if s.shownFor != index {
		s.shown = product.NewURLSet()
		s.shownFor = index
	}
	gen := s.bumpLocked()
	query := categories[index].Name
	s.mu.Unlock()

	found, err := s.searcher.Search(ctx, query, product.DefaultLimit)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		metrics.StaleResponses.WithLabelValues("select").Inc()
		s.log.Debug().Int("index", index).Msg("discarding superseded search response")
		return s.viewLocked(), nil
	}
	s.loading = false
	if err != nil {
		s.log.Warn().Err(err).Str("query", query).Msg("searching products failed")
		s.results = []product.SearchProduct{}
		return s.viewLocked(), nil
	}
	s.results = found
	s.shown.Add(found...)
	return s.viewLocked(), nil
}

// Back returns to Unselected, dropping results and any open detail.
func (s *Scene) Back() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	return s.viewLocked()
}

// Refresh replaces the results with products not shown before for the
// selected category. Only one refresh runs at a time; a second call while
// one is running fails with ErrRefreshInFlight.
func (s *Scene) Refresh(ctx context.Context) (View, error) {
	s.mu.Lock()
	index, ok := selectedIndex(s.state)
	if !ok {
		s.mu.Unlock()
		return View{}, ErrNotSelected
	}
	if s.refreshing {
		s.mu.Unlock()
		return View{}, ErrRefreshInFlight
	}
	s.refreshing = true
	s.loading = true
	s.results = nil
	s.state = Selected{Index: index}
	gen := s.bumpLocked()
	shown := s.shown.Clone()
	query := s.recs.Categories()[index].Name
	s.mu.Unlock()

	res, err := s.searcher.Refresh(ctx, query, shown)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshing = false
	if gen != s.generation {
		metrics.StaleResponses.WithLabelValues("refresh").Inc()
		s.log.Debug().Int("index", index).Msg("discarding superseded refresh response")
		return s.viewLocked(), nil
	}
	s.loading = false
	if err != nil {
		s.log.Warn().Err(err).Str("query", query).Msg("refreshing products failed")
		s.results = []product.SearchProduct{}
		return s.viewLocked(), nil
	}
	s.log.Debug().Int("attempts", res.Attempts).Bool("fallback", res.Fallback).Int("products", len(res.Products)).Msg("refreshed products")
	s.results = res.Products
	s.shown.Add(res.Products...)
	return s.viewLocked(), nil
}

// OpenDetail shows the result with the given URL. Clicking the product that
// is already open does nothing.
func (s *Scene) OpenDetail(url string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, ok := selectedIndex(s.state)
	if !ok {
		return View{}, ErrNotSelected
	}
	if d, open := s.state.(Detail); open && d.Product.URL == url {
		return s.viewLocked(), nil
	}
	for _, p := range s.results {
		if p.URL == url {
			s.state = Detail{Index: index, Product: p}
			s.lastActive = time.Now()
			return s.viewLocked(), nil
		}
	}
	return View{}, ErrUnknownProduct
}

// CloseDetail returns from Detail to Selected. In any other state it does nothing.
func (s *Scene) CloseDetail() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.state.(Detail); ok {
		s.state = Selected{Index: d.Index}
	}
	s.lastActive = time.Now()
	return s.viewLocked()
}

// View returns a snapshot of the scene.
func (s *Scene) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// ShownCount is the size of the shown-URL set for the current category.
func (s *Scene) ShownCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown.Len()
}

func (s *Scene) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Scene) resetLocked() {
	s.state = Unselected{}
	s.results = nil
	s.loading = false
	s.bumpLocked()
}

func (s *Scene) bumpLocked() uint64 {
	s.generation++
	s.lastActive = time.Now()
	return s.generation
}
