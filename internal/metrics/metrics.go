// Package metrics provides Prometheus instrumentation for Kestrel.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, route pattern,
	// and status code.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kestrel",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route pattern, and status code.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kestrel",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// DatasetRefreshTotal counts warehouse dataset loads by dataset and
	// result.
	DatasetRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kestrel",
			Name:      "dataset_refresh_total",
			Help:      "Total warehouse dataset refreshes by dataset and result.",
		},
		[]string{"dataset", "result"},
	)

	// DatasetRowsLoaded tracks the row count of the last successful
	// load per dataset.
	DatasetRowsLoaded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "kestrel",
			Name:      "dataset_rows_loaded",
			Help:      "Rows in the most recently loaded copy of each dataset.",
		},
		[]string{"dataset"},
	)

	// DatasetRowsDropped counts rows discarded during scanning, e.g.
	// transactions with unparseable timestamps.
	DatasetRowsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kestrel",
			Name:      "dataset_rows_dropped_total",
			Help:      "Rows dropped while scanning warehouse datasets.",
		},
		[]string{"dataset"},
	)

	// CacheRequestsTotal counts dataset cache lookups by layer and
	// outcome (hit or miss).
	CacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kestrel",
			Name:      "cache_requests_total",
			Help:      "Dataset cache lookups by layer and outcome.",
		},
		[]string{"layer", "outcome"},
	)

	// ScoresTotal counts simulator scorings by resulting risk tier.
	ScoresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kestrel",
			Name:      "scores_total",
			Help:      "Simulator scorings by risk tier.",
		},
		[]string{"tier"},
	)

	// ScoreWarningsTotal counts non-fatal encoding warnings emitted
	// while scoring, e.g. category values unseen during training.
	ScoreWarningsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kestrel",
			Name:      "score_warnings_total",
			Help:      "Non-fatal encoding warnings emitted while scoring.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		DatasetRefreshTotal,
		DatasetRowsLoaded,
		DatasetRowsDropped,
		CacheRequestsTotal,
		ScoresTotal,
		ScoreWarningsTotal,
	)
}

// Handler returns the HTTP handler serving the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
