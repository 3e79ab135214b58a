// Package metrics provides Prometheus metrics for the data service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Subgraph metrics
	SubgraphRequests *prometheus.CounterVec
	SubgraphLatency  *prometheus.HistogramVec
	SubgraphCache    *prometheus.CounterVec

	// Upstream API metrics
	UpstreamRequests *prometheus.CounterVec

	// RPC metrics
	RPCCalls *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Snapshot metrics
	SnapshotRuns      *prometheus.CounterVec
	SnapshotTokens    prometheus.Counter
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates collectors registered on a private registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "taikodata"
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SubgraphRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subgraph",
			Name:      "requests_total",
			Help:      "Total number of subgraph queries by chain, client, operation and outcome",
		}, []string{"chain_id", "client", "operation", "outcome"}),
		SubgraphLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "subgraph",
			Name:      "request_duration_seconds",
			Help:      "Subgraph query latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"chain_id", "client", "operation"}),
		SubgraphCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subgraph",
			Name:      "cache_total",
			Help:      "Subgraph response cache lookups by result",
		}, []string{"client", "result"}),

		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of Uniswap data API requests by operation and outcome",
		}, []string{"operation", "outcome"}),

		RPCCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "calls_total",
			Help:      "Total number of eth_call requests by chain and result",
		}, []string{"chain_id", "result"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of API requests by route and status",
		}, []string{"route", "status"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		SnapshotRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "runs_total",
			Help:      "Total number of snapshot runs by status",
		}, []string{"status"}),
		SnapshotTokens: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "tokens_written_total",
			Help:      "Total number of token snapshot rows written",
		}),
		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix timestamp of the last successful snapshot run",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSubgraph records one subgraph query.
func (m *Metrics) ObserveSubgraph(chainID, client, operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SubgraphRequests.WithLabelValues(chainID, client, operation, outcome).Inc()
	m.SubgraphLatency.WithLabelValues(chainID, client, operation).Observe(elapsed.Seconds())
}

// ObserveCache records a cache hit or miss.
func (m *Metrics) ObserveCache(client string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.SubgraphCache.WithLabelValues(client, result).Inc()
}

// ObserveUpstream records one Uniswap data API request.
func (m *Metrics) ObserveUpstream(operation, outcome string) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(operation, outcome).Inc()
}

// ObserveRPC records one eth_call, served from cache or not.
func (m *Metrics) ObserveRPC(chainID string, cached bool) {
	if m == nil {
		return
	}
	result := "remote"
	if cached {
		result = "cached"
	}
	m.RPCCalls.WithLabelValues(chainID, result).Inc()
}

// ObserveHTTP records one API request.
func (m *Metrics) ObserveHTTP(route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, status).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveSnapshot records a snapshot run and, on success, its row count.
func (m *Metrics) ObserveSnapshot(status string, rows int, at time.Time) {
	if m == nil {
		return
	}
	m.SnapshotRuns.WithLabelValues(status).Inc()
	if status == "success" {
		m.SnapshotTokens.Add(float64(rows))
		m.LastSuccessfulRun.Set(float64(at.Unix()))
	}
}
