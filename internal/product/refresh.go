package product

import (
	"context"
	"fmt"
)

// FetchFunc runs one search for an already chosen query.
type FetchFunc func(ctx context.Context, limit int) ([]SearchProduct, error)

// RefreshPolicy bounds the refresh loop.
type RefreshPolicy struct {
	// MaxAttempts is the number of filtered searches tried before falling back.
	MaxAttempts int
	// RequestLimit is the result count asked for on each filtered attempt.
	RequestLimit int
	// Want caps how many unseen products are accepted.
	Want int
	// FallbackLimit is the result count of the final unfiltered search.
	FallbackLimit int
}

var DefaultRefreshPolicy = RefreshPolicy{
	MaxAttempts:   5,
	RequestLimit:  12,
	Want:          6,
	FallbackLimit: 6,
}

type RefreshResult struct {
	Products []SearchProduct
	// Attempts counts filtered searches only; the fallback search is not included.
	Attempts int
	// Fallback is set when no attempt produced an unseen product.
	Fallback bool
}

// RefreshUnseen searches repeatedly until a response contains at least one
// product whose URL is not in shown. The first such response wins, trimmed to
// policy.Want. When every attempt comes back fully seen, one unfiltered search
// of policy.FallbackLimit products is returned instead. Any fetch error ends
// the loop immediately.
func RefreshUnseen(ctx context.Context, fetch FetchFunc, shown URLSet, policy RefreshPolicy) (RefreshResult, error) {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return RefreshResult{Attempts: attempt - 1}, err
		}

		found, err := fetch(ctx, policy.RequestLimit)
		if err != nil {
			return RefreshResult{Attempts: attempt}, fmt.Errorf("refresh attempt %d: %w", attempt, err)
		}

		unseen := shown.Unseen(found)
		if len(unseen) == 0 {
			continue
		}
		if policy.Want > 0 && len(unseen) > policy.Want {
			unseen = unseen[:policy.Want]
		}
		return RefreshResult{Products: unseen, Attempts: attempt}, nil
	}

	found, err := fetch(ctx, policy.FallbackLimit)
	if err != nil {
		return RefreshResult{Attempts: policy.MaxAttempts, Fallback: true}, fmt.Errorf("refresh fallback: %w", err)
	}
	return RefreshResult{Products: found, Attempts: policy.MaxAttempts, Fallback: true}, nil
}
