// Package metrics documents the Prometheus metrics exported by the reqres
// client and exposes the registry they are registered with.
//
// Metrics are defined next to the code that updates them (client, cache,
// user) and registered through promauto on the default registerer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all package metrics are attached to.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer matching Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves every registered metric in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Transport (pkg/client):
//   - reqres_requests_total{status} (Counter): HTTP attempts by status, "network_error" for faults
//   - reqres_request_duration_seconds (Histogram): Get duration, retries included
//   - reqres_errors_total{class} (Counter): attempt failures by class (client, server, timeout, network)
//   - reqres_retries_total{error_class} (Counter): retry attempts
//   - reqres_retry_backoff_seconds{error_class} (Histogram): backoff waits
//   - reqres_retry_exhausted_total{error_class} (Counter): requests that used every attempt
//
// Cache (pkg/cache):
//   - reqres_cache_hits_total{backend} (Counter)
//   - reqres_cache_misses_total{backend} (Counter): expired entries included
//   - reqres_cache_errors_total{backend,operation} (Counter)
//
// Service (pkg/user):
//   - reqres_user_lookups_total{operation,outcome} (Counter): outcome is
//     cache_hit, fetched, absent or error
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(reqres_cache_hits_total[5m])) /
//   (sum(rate(reqres_cache_hits_total[5m])) + sum(rate(reqres_cache_misses_total[5m])))
//
//   # Share of requests that needed a retry
//   sum(rate(reqres_retries_total[5m])) / sum(rate(reqres_requests_total[5m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(reqres_request_duration_seconds_bucket[5m]))
