package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(Config{RecommendURL: srv.URL + "/", SearchURL: srv.URL}), &hits
}

func TestGetRecommendations(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/recommendations", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"goal":"relax more"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"vibe_analysis":"calm","products":[{"name":"Candle","reason":"ambiance","category":"home"}]}`))
	})

	resp, err := client.GetRecommendations(context.Background(), "relax more")
	require.NoError(t, err)
	assert.Equal(t, "calm", resp.VibeAnalysis)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Candle", resp.Products[0].Name)
	assert.Equal(t, "home", resp.Products[0].Category)
}

func TestGetRecommendations_EmptyGoalSkipsNetwork(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.GetRecommendations(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyGoal)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestGetRecommendations_StatusError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})

	_, err := client.GetRecommendations(context.Background(), "relax")
	var se *StatusError
	require.True(t, errors.As(err, &se), "expected StatusError, got %v", err)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, endpointRecommendations, se.Endpoint)
}

func TestGetRecommendations_MalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"vibe_analysis":`))
	})

	_, err := client.GetRecommendations(context.Background(), "relax")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode recommendations")
}

func TestSearchProducts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search", r.URL.Path)
		assert.Equal(t, "scented candle", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"products":[
			{"title":"A","price":10.5,"url":"https://shop.example/a","rating":"4.5"},
			{"title":"B","price":3,"url":"https://shop.example/b","platform":"Etsy"},
			{"title":"C","price":7,"url":"https://shop.example/c"}
		]}`))
	})

	found, err := client.SearchProducts(context.Background(), "scented candle", 2)
	require.NoError(t, err)
	require.Len(t, found, 2, "results beyond limit are dropped")
	assert.Equal(t, "https://shop.example/a", found[0].URL)
	assert.Equal(t, 10.5, found[0].Price)
	assert.Equal(t, "Etsy", found[1].Platform)
}

func TestSearchProducts_EmptyProducts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	found, err := client.SearchProducts(context.Background(), "tea", 6)
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func TestSearchProducts_InvalidInput(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.SearchProducts(context.Background(), "", 6)
	require.ErrorIs(t, err, ErrEmptyQuery)
	_, err = client.SearchProducts(context.Background(), "tea", 0)
	require.ErrorIs(t, err, ErrInvalidLimit)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestCircuitBreakerOpensAfterRepeatedFailures(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 10; i++ {
		_, err := client.SearchProducts(context.Background(), "pillow", 6)
		require.Error(t, err)
	}
	before := atomic.LoadInt32(hits)

	_, err := client.SearchProducts(context.Background(), "pillow", 6)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unavailable"), "expected breaker rejection, got %v", err)
	assert.Equal(t, before, atomic.LoadInt32(hits), "open breaker must not reach the server")
}

func TestCircuitBreakerIgnoresCanceledRequests(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"products":[]}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 12; i++ {
		_, err := client.SearchProducts(ctx, "pillow", 6)
		require.ErrorIs(t, err, context.Canceled)
	}

	found, err := client.SearchProducts(context.Background(), "pillow", 6)
	require.NoError(t, err, "canceled requests must not open the breaker")
	assert.Empty(t, found)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}
