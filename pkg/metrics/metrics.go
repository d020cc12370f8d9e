package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts served requests by route template and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "findmy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "findmy_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	// HTTPRetriesTotal counts replays of idempotent requests after a transient failure.
	HTTPRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "findmy_http_retries_total",
			Help: "Total number of HTTP request retries",
		},
		[]string{"method", "status"},
	)

	// IntentExtractionsTotal counts how each intent was resolved.
	// path is one of structured, heuristic, sentinel, model_error.
	IntentExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "findmy_intent_extractions_total",
			Help: "Total number of intent extractions by resolution path",
		},
		[]string{"path"},
	)

	// PlacesCallsTotal counts outbound places provider calls.
	PlacesCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "findmy_places_calls_total",
			Help: "Total number of places provider calls by endpoint and provider status",
		},
		[]string{"endpoint", "status"},
	)

	// SearchCacheLookupsTotal counts search cache lookups by tier and outcome.
	SearchCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "findmy_search_cache_lookups_total",
			Help: "Total number of search cache lookups",
		},
		[]string{"tier", "result"},
	)

	// RecommendationsTotal counts pipeline outcomes.
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "findmy_recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	// BreakerStateChangesTotal counts circuit breaker transitions.
	BreakerStateChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "findmy_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "to"},
	)
)
