// Package metrics provides Prometheus instrumentation for the lookup pipeline.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for upstream calls and lookup sessions.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Upstream call latency by endpoint ("search", "intersection")
	UpstreamLatency *prometheus.HistogramVec

	// Upstream failures by endpoint and reason
	UpstreamErrors *prometheus.CounterVec

	// UiState transitions by target kind
	StateTransitions *prometheus.CounterVec

	// Outcomes dropped because a newer request superseded them, by stage
	StaleOutcomes *prometheus.CounterVec

	// Currently open lookup sessions
	ActiveSessions prometheus.Gauge
}

// New registers all metrics on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gsr_upstream_request_duration_seconds",
			Help:    "Duration of calls to the geo endpoints",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),

		UpstreamErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gsr_upstream_errors_total",
			Help: "Failed calls to the geo endpoints by reason",
		}, []string{"endpoint", "reason"}), // reason: "transport", "status", "decode"

		StateTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gsr_state_transitions_total",
			Help: "Lookup UiState transitions by target kind",
		}, []string{"kind"}),

		StaleOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gsr_stale_outcomes_total",
			Help: "Resolver outcomes swallowed because a newer request superseded them",
		}, []string{"stage"}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gsr_active_sessions",
			Help: "Lookup sessions currently open",
		}),
	}
}

// ObserveUpstream records the duration of one upstream call.
func (m *Metrics) ObserveUpstream(endpoint string, d time.Duration) {
	if m != nil {
		m.UpstreamLatency.WithLabelValues(endpoint).Observe(d.Seconds())
	}
}

// IncrementUpstreamError records a failed upstream call.
func (m *Metrics) IncrementUpstreamError(endpoint, reason string) {
	if m != nil {
		m.UpstreamErrors.WithLabelValues(endpoint, reason).Inc()
	}
}

// IncrementTransition records a UiState transition.
func (m *Metrics) IncrementTransition(kind string) {
	if m != nil {
		m.StateTransitions.WithLabelValues(kind).Inc()
	}
}

// IncrementStale records a swallowed outcome.
func (m *Metrics) IncrementStale(stage string) {
	if m != nil {
		m.StaleOutcomes.WithLabelValues(stage).Inc()
	}
}

// SessionOpened bumps the active sessions gauge.
func (m *Metrics) SessionOpened() {
	if m != nil {
		m.ActiveSessions.Inc()
	}
}

// SessionClosed lowers the active sessions gauge.
func (m *Metrics) SessionClosed() {
	if m != nil {
		m.ActiveSessions.Dec()
	}
}
