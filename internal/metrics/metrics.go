// Package metrics defines the Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QuotesTotal counts quote requests by outcome (success, validation_error, service_down).
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxquote_quotes_total",
			Help: "Quote requests served, by outcome.",
		},
		[]string{"outcome"},
	)

	// CacheLookupsTotal counts rate cache lookups by result (hit, miss).
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxquote_cache_lookups_total",
			Help: "Rate cache lookups, by result.",
		},
		[]string{"result"},
	)

	// SourceFetchesTotal counts upstream rate fetches by source and status (ok, error).
	SourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxquote_source_fetches_total",
			Help: "Upstream rate source fetches, by source and status.",
		},
		[]string{"source", "status"},
	)

	// SourceFetchDuration observes upstream fetch latency per source.
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fxquote_source_fetch_duration_seconds",
			Help:    "Upstream rate source fetch latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
)

// Outcome label values for QuotesTotal.
const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeServiceDown     = "service_down"
)
