package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestClientMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClientMetrics(reg)
	m.ObserveRequest("GET", "ok", 0.05)
	m.ObserveCache("clients", true)
	m.ObserveCache("clients", false)
	m.ObserveCache("clients", false)

	counts := CacheCounts(reg)
	hits, misses := counts["clients"].Hits, counts["clients"].Misses
	assert.Equal(t, 1.0, hits)
	assert.Equal(t, 2.0, misses)
}

func TestClientMetricsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewClientMetrics(reg)
	second := NewClientMetrics(reg)
	first.ObserveRequest("GET", "ok", 0.1)
	second.ObserveRequest("GET", "ok", 0.1)

	snap := SnapshotLatency(reg)
	assert.Equal(t, int64(2), snap.Total)
}

func TestClientMetricsNilSafe(t *testing.T) {
	var m *ClientMetrics
	m.ObserveRequest("GET", "ok", 0.1)
	m.ObserveCache("orders", true)
}

func TestSnapshotLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClientMetrics(reg)
	for i := 0; i < 10; i++ {
		m.ObserveRequest("GET", "ok", 0.02)
	}
	// failures are excluded from the snapshot
	m.ObserveRequest("GET", "timeout", 30)

	snap := SnapshotLatency(reg)
	assert.Equal(t, int64(10), snap.Total)
	assert.InDelta(t, 23.5, snap.P90Ms, 0.01)
	assert.InDelta(t, 24.25, snap.P95Ms, 0.01)

	var counted int64
	for _, b := range snap.Buckets {
		counted += b.Count
	}
	assert.Equal(t, int64(10), counted)
}

func TestSnapshotLatencyEmpty(t *testing.T) {
	snap := SnapshotLatency(prometheus.NewRegistry())
	assert.Zero(t, snap.Total)
	assert.Empty(t, snap.Buckets)
}

func TestStatusOutcome(t *testing.T) {
	assert.Equal(t, "404", StatusOutcome(404))
}
