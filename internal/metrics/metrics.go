// Package metrics registers the Prometheus instruments for the ingestion
// pipeline. Collectors are package-level and registered once at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderRequests counts outbound Yahoo API calls by outcome.
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fantasy_provider_requests_total",
		Help: "Outbound fantasy provider API requests by result.",
	}, []string{"result"})

	// ProviderRequestDuration observes outbound call latency.
	ProviderRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fantasy_provider_request_duration_seconds",
		Help:    "Latency of fantasy provider API requests.",
		Buckets: prometheus.DefBuckets,
	})

	// WeeksSkipped counts per-week stat fetches dropped by the best-effort
	// weekly aggregation loop.
	WeeksSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fantasy_weekly_fetch_skipped_total",
		Help: "Weekly stat fetches skipped due to upstream failure or empty payload.",
	})

	// TokenRefreshes counts OAuth refresh attempts by outcome.
	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fantasy_token_refreshes_total",
		Help: "OAuth token refresh attempts by result.",
	}, []string{"result"})

	// VectorUpserts counts stat vector writes by outcome.
	VectorUpserts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fantasy_vector_upserts_total",
		Help: "Stat vector upserts by result.",
	}, []string{"result"})

	// Predictions counts similarity predictions served, split by whether any
	// neighbors were found.
	Predictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fantasy_predictions_total",
		Help: "Similarity predictions served, by neighbor availability.",
	}, []string{"outcome"})
)

// Label values kept in one place so call sites cannot drift.
const (
	ResultOK    = "ok"
	ResultError = "error"

	OutcomeNeighbors = "neighbors"
	OutcomeNoData    = "no_data"
)
