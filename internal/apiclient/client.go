// Package apiclient talks to the recommendation and product search services.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/wichananm65/shop-for-outcomes/internal/metrics"
	"github.com/wichananm65/shop-for-outcomes/internal/product"
	"github.com/wichananm65/shop-for-outcomes/internal/recommended"
)

const (
	endpointRecommendations = "recommendations"
	endpointSearch          = "search"

	// maxBodyBytes caps how much of an upstream response is read.
	maxBodyBytes = 4 << 20
)

var (
	ErrEmptyGoal    = errors.New("apiclient: goal is empty")
	ErrEmptyQuery   = errors.New("apiclient: search query is empty")
	ErrInvalidLimit = errors.New("apiclient: limit must be positive")
)

// StatusError is returned when an upstream service answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("apiclient: %s returned status %d", e.Endpoint, e.StatusCode)
}

type Config struct {
	RecommendURL string
	SearchURL    string
	Timeout      time.Duration
	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client
}

// Client calls both upstream services. Each endpoint has its own circuit breaker.
type Client struct {
	recommendURL string
	searchURL    string
	http         *http.Client

	recommendCB *gobreaker.CircuitBreaker[[]byte]
	searchCB    *gobreaker.CircuitBreaker[[]byte]
}

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		recommendURL: strings.TrimRight(cfg.RecommendURL, "/"),
		searchURL:    strings.TrimRight(cfg.SearchURL, "/"),
		http:         hc,
		recommendCB:  newBreaker("recommendation-api"),
		searchCB:     newBreaker("search-api"),
	}
}

type recommendRequest struct {
	Goal string `json:"goal"`
}

// GetRecommendations asks the recommendation service about goal. It is not retried.
func (c *Client) GetRecommendations(ctx context.Context, goal string) (recommended.Response, error) {
	if strings.TrimSpace(goal) == "" {
		return recommended.Response{}, ErrEmptyGoal
	}

	payload, err := json.Marshal(recommendRequest{Goal: goal})
	if err != nil {
		return recommended.Response{}, fmt.Errorf("apiclient: encode recommendation request: %w", err)
	}

	body, err := c.call(c.recommendCB, endpointRecommendations, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.recommendURL+"/api/recommendations", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return recommended.Response{}, err
	}

	var out recommended.Response
	if err := json.Unmarshal(body, &out); err != nil {
		return recommended.Response{}, fmt.Errorf("apiclient: decode recommendations: %w", err)
	}
	return out, nil
}

type searchResponse struct {
	Products []product.SearchProduct `json:"products"`
}

// SearchProducts returns at most limit products for query, in the order the
// search service sent them.
func (c *Client) SearchProducts(ctx context.Context, query string, limit int) ([]product.SearchProduct, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.call(c.searchCB, endpointSearch, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"/api/search?"+params.Encode(), nil)
	})
	if err != nil {
		return nil, err
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("apiclient: decode search results: %w", err)
	}
	if out.Products == nil {
		out.Products = []product.SearchProduct{}
	}
	if len(out.Products) > limit {
		out.Products = out.Products[:limit]
	}
	return out.Products, nil
}

// call performs one request through cb and returns the response body.
func (c *Client) call(cb *gobreaker.CircuitBreaker[[]byte], endpoint string, build func() (*http.Request, error)) ([]byte, error) {
	start := time.Now()
	body, err := cb.Execute(func() ([]byte, error) {
		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("apiclient: build %s request: %w", endpoint, err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("apiclient: %s request: %w", endpoint, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("apiclient: read %s response: %w", endpoint, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
		}
		return data, nil
	})
	metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.UpstreamRequests.WithLabelValues(endpoint, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.UpstreamRequests.WithLabelValues(endpoint, "rejected").Inc()
		return nil, fmt.Errorf("apiclient: %s unavailable: %w", endpoint, err)
	case errors.Is(err, context.Canceled):
		metrics.UpstreamRequests.WithLabelValues(endpoint, "canceled").Inc()
	default:
		metrics.UpstreamRequests.WithLabelValues(endpoint, "failure").Inc()
	}
	return body, err
}
