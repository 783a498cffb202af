package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "clinicdesk"
	subsystem = "apiclient"

	// RequestLatencyName is the fully-qualified histogram name read back by LatencySnapshot.
	RequestLatencyName = namespace + "_" + subsystem + "_request_latency_seconds"
	// CacheLookupsName is the cache counter read back by CacheCounts.
	CacheLookupsName = namespace + "_cache_lookups_total"
)

// ClientMetrics exposes counters/histograms for backend calls and the response cache.
type ClientMetrics struct {
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
}

// NewClientMetrics registers the collectors on reg (the default registerer
// when nil). Registering twice on the same registry reuses the existing
// collectors instead of panicking.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	m := &ClientMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total backend API requests by method and outcome",
		}, []string{"method", "outcome"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_latency_seconds",
			Help:      "Latency of backend API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Response cache lookups by namespace and result",
		}, []string{"namespace", "result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m.requestsTotal = register(reg, m.requestsTotal)
	m.requestLatency = register(reg, m.requestLatency)
	m.cacheLookups = register(reg, m.cacheLookups)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveRequest records one finished request. outcome is "ok", "timeout",
// "network", "parse" or the HTTP status code for API errors.
func (m *ClientMetrics) ObserveRequest(method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, outcome).Inc()
	m.requestLatency.WithLabelValues(method, outcome).Observe(seconds)
}

// ObserveCache records a cache hit or miss for a service namespace.
func (m *ClientMetrics) ObserveCache(ns string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(ns, result).Inc()
}

// StatusOutcome renders an HTTP status as an outcome label.
func StatusOutcome(status int) string {
	return strconv.Itoa(status)
}
