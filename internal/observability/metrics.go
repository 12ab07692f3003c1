// Package observability registers the Prometheus metrics for the service.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediamap_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediamap_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	upstreamLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediamap_upstream_latency_seconds",
			Help:    "Latency of upstream calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"upstream"},
	)

	searchCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediamap_search_cache_results_total",
			Help: "Search response cache results by outcome.",
		},
		[]string{"outcome"},
	)

	resolveOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediamap_resolve_total",
			Help: "Map click resolutions by outcome.",
		},
		[]string{"outcome"},
	)

	snapshotOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediamap_filter_snapshot_ops_total",
			Help: "Filter snapshot store operations.",
		},
		[]string{"op", "result"},
	)

	catalogReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediamap_catalog_reloads_total",
			Help: "Library catalog reloads by result.",
		},
		[]string{"result"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mediamap_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveUpstreamLatency(upstream string, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream).Observe(durationSeconds)
}

func IncSearchCacheHit()  { searchCacheResults.WithLabelValues("hit").Inc() }
func IncSearchCacheMiss() { searchCacheResults.WithLabelValues("miss").Inc() }

// IncResolve counts a resolution outcome: city, no_city or no_country.
func IncResolve(outcome string) {
	resolveOutcomes.WithLabelValues(outcome).Inc()
}

// IncSnapshotOp counts a snapshot store operation (load/save/delete) with
// result ok, miss, corrupt or error.
func IncSnapshotOp(op, result string) {
	snapshotOps.WithLabelValues(op, result).Inc()
}

func IncCatalogReload(result string) {
	catalogReloads.WithLabelValues(result).Inc()
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
