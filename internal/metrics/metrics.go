// Package metrics exposes Prometheus collectors for directory lookups.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the lookup orchestrator and backends.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Attempts by backend, field and outcome
	Attempts *prometheus.CounterVec

	// Attempt latency by backend
	AttemptLatency *prometheus.HistogramVec

	// Search results by outcome: complete, partial, not_found, invalid
	Searches *prometheus.CounterVec

	// Overall search latency
	SearchLatency prometheus.Histogram

	// Reconnects of the directory-protocol backend
	Reconnects prometheus.Counter
}

// New creates a Metrics instance registered with reg.
// A nil reg creates unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Attempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ptonppl_attempts_total",
			Help: "Total lookup attempts by backend, field and outcome",
		}, []string{"backend", "field", "outcome"}),

		AttemptLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ptonppl_attempt_duration_seconds",
			Help:    "Duration of single-backend lookup attempts",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15},
		}, []string{"backend"}),

		Searches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ptonppl_searches_total",
			Help: "Total searches by result",
		}, []string{"result"}),

		SearchLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ptonppl_search_duration_seconds",
			Help:    "Duration of full searches across all attempted backends",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 30},
		}),

		Reconnects: f.NewCounter(prometheus.CounterOpts{
			Name: "ptonppl_ldap_reconnects_total",
			Help: "Total directory-protocol reconnects",
		}),
	}
}

// ObserveAttempt records one attempt and its latency.
func (m *Metrics) ObserveAttempt(backend, field, outcome string, d time.Duration) {
	if m != nil {
		m.Attempts.WithLabelValues(backend, field, outcome).Inc()
		m.AttemptLatency.WithLabelValues(backend).Observe(d.Seconds())
	}
}

// ObserveSearch records a finished search.
func (m *Metrics) ObserveSearch(result string, d time.Duration) {
	if m != nil {
		m.Searches.WithLabelValues(result).Inc()
		m.SearchLatency.Observe(d.Seconds())
	}
}

// IncrementReconnects records a directory-protocol reconnect.
func (m *Metrics) IncrementReconnects() {
	if m != nil {
		m.Reconnects.Inc()
	}
}
