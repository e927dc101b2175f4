package product

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedFetch returns one scripted response per call and records the limits it was asked for.
type scriptedFetch struct {
	responses [][]SearchProduct
	err       error
	limits    []int
}

func (f *scriptedFetch) fetch(_ context.Context, limit int) ([]SearchProduct, error) {
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	i := len(f.limits) - 1
	if i >= len(f.responses) {
		return nil, nil
	}
	return f.responses[i], nil
}

func items(prefix string, n int) []SearchProduct {
	out := make([]SearchProduct, n)
	for i := range out {
		out[i] = SearchProduct{Title: fmt.Sprintf("%s %d", prefix, i), URL: fmt.Sprintf("https://shop.example/%s/%d", prefix, i)}
	}
	return out
}

func shownOf(products ...SearchProduct) URLSet {
	s := NewURLSet()
	s.Add(products...)
	return s
}

func TestRefreshUnseen_FirstAttemptWins(t *testing.T) {
	seen := items("old", 6)
	f := &scriptedFetch{responses: [][]SearchProduct{append(append([]SearchProduct{}, seen...), items("new", 8)...)}}

	res, err := RefreshUnseen(context.Background(), f.fetch, shownOf(seen...), DefaultRefreshPolicy)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Attempts)
	assert.False(t, res.Fallback)
	assert.Equal(t, []int{12}, f.limits)
	require.Len(t, res.Products, 6, "unseen products are trimmed to Want")
	assert.Equal(t, "https://shop.example/new/0", res.Products[0].URL)
}

func TestRefreshUnseen_AcceptsFewerThanWant(t *testing.T) {
	seen := items("old", 6)
	f := &scriptedFetch{responses: [][]SearchProduct{
		seen,
		append(append([]SearchProduct{}, seen...), items("new", 2)...),
	}}

	res, err := RefreshUnseen(context.Background(), f.fetch, shownOf(seen...), DefaultRefreshPolicy)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Attempts)
	assert.Len(t, res.Products, 2)
	assert.False(t, res.Fallback)
}

func TestRefreshUnseen_FallsBackAfterMaxAttempts(t *testing.T) {
	seen := items("old", 6)
	f := &scriptedFetch{responses: [][]SearchProduct{seen, seen, seen, seen, seen, seen[:4]}}

	res, err := RefreshUnseen(context.Background(), f.fetch, shownOf(seen...), DefaultRefreshPolicy)
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.Equal(t, 5, res.Attempts)
	assert.Equal(t, []int{12, 12, 12, 12, 12, 6}, f.limits, "five filtered calls then one fallback call")
	assert.Equal(t, seen[:4], res.Products, "fallback results are not filtered")
}

func TestRefreshUnseen_NeverEmptyWhenUnseenExisted(t *testing.T) {
	seen := items("old", 6)
	for hit := 0; hit < DefaultRefreshPolicy.MaxAttempts; hit++ {
		responses := make([][]SearchProduct, DefaultRefreshPolicy.MaxAttempts)
		for i := range responses {
			responses[i] = seen
		}
		responses[hit] = append(append([]SearchProduct{}, seen...), items("fresh", 1)...)
		f := &scriptedFetch{responses: responses}

		res, err := RefreshUnseen(context.Background(), f.fetch, shownOf(seen...), DefaultRefreshPolicy)
		require.NoError(t, err)
		assert.Equal(t, hit+1, res.Attempts)
		require.Len(t, res.Products, 1)
		assert.LessOrEqual(t, len(f.limits), DefaultRefreshPolicy.MaxAttempts)
	}
}

func TestRefreshUnseen_ErrorAborts(t *testing.T) {
	boom := errors.New("search down")
	f := &scriptedFetch{err: boom}

	res, err := RefreshUnseen(context.Background(), f.fetch, NewURLSet(), DefaultRefreshPolicy)
	require.ErrorIs(t, err, boom)
	assert.Empty(t, res.Products)
	assert.Len(t, f.limits, 1)
}

func TestRefreshUnseen_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &scriptedFetch{}

	_, err := RefreshUnseen(ctx, f.fetch, NewURLSet(), DefaultRefreshPolicy)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.limits)
}
