package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementTransition("suggestions")
	m.IncrementTransition("suggestions")
	m.IncrementStale("places")
	m.IncrementUpstreamError("search", "status")
	m.ObserveUpstream("search", 120*time.Millisecond)
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StateTransitions.WithLabelValues("suggestions")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleOutcomes.WithLabelValues("places")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamErrors.WithLabelValues("search", "status")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions))
	assert.Equal(t, 1, testutil.CollectAndCount(m.UpstreamLatency))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementTransition("idle")
		m.IncrementStale("office")
		m.ObserveUpstream("intersection", time.Second)
		m.SessionOpened()
		m.SessionClosed()
	})
}
