// Package observability holds the Prometheus collectors and tracing setup.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "riskdash"

var (
	// HTTPRequests counts handled requests.
	// Labels: method, route (gin full path), status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	// HTTPDuration measures request latency.
	// Labels: method, route
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// LLMCalls counts chat-completion calls.
	// Labels: outcome (success, error, empty)
	LLMCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "llm",
		Name:      "calls_total",
		Help:      "Total chat-completion calls by outcome",
	}, []string{"outcome"})

	// LLMDuration measures chat-completion latency.
	// Labels: outcome
	LLMDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "llm",
		Name:      "call_duration_seconds",
		Help:      "Chat-completion latency in seconds",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"outcome"})

	// SnapshotRows is the number of feature rows held in memory
	SnapshotRows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "snapshot",
		Name:      "rows",
		Help:      "Feature rows loaded for the configured region",
	})

	// CacheLookups counts response cache lookups.
	// Labels: tier (local, redis), result (hit, miss)
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Response cache lookups by tier and result",
	}, []string{"tier", "result"})
)
