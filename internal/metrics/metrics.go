package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream API client
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_upstream_requests_total",
			Help: "Requests sent to the recommendation and search services",
		},
		[]string{"endpoint", "outcome"}, // outcome: success, failure, rejected
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shop_upstream_request_duration_seconds",
			Help:    "Latency of upstream service calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shop_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Refresh loop
	RefreshAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shop_refresh_attempts",
			Help:    "Filtered search attempts needed per refresh",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)

	RefreshFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shop_refresh_fallbacks_total",
			Help: "Refreshes that found no unseen product and fell back to an unfiltered search",
		},
	)

	StaleResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_stale_responses_total",
			Help: "Search responses discarded because a newer transition superseded them",
		},
		[]string{"operation"},
	)

	// Sessions and handoffs
	ActiveScenes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shop_active_scenes",
			Help: "Scenes currently held in memory",
		},
	)

	SnapshotsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_result_snapshots_consumed_total",
			Help: "Results view snapshot reads by outcome",
		},
		[]string{"outcome"}, // ok, missing, invalid
	)
)
