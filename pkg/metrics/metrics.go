// Package metrics exposes the Prometheus registry used by the Sunlight client.
// Metrics are defined in their own packages (client, pagination, ratelimit)
// and registered through promauto on the default registerer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all Sunlight metrics are registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer serving Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - sunlight_requests_total{service, status} (Counter): Requests by service and HTTP status
//   - sunlight_request_duration_seconds{service} (Histogram): Request duration by service
//   - sunlight_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Paging Metrics (pkg/pagination):
//   - sunlight_pages_fetched_total{operation} (Counter): Pages requested per operation
//   - sunlight_records_yielded_total{operation} (Counter): Records handed to consumers
//   - sunlight_paging_stops_total{operation, reason} (Counter): Paging runs ended by
//     limit, short_page, empty_page, error or abandoned
//
// Quota Metrics (pkg/ratelimit):
//   - sunlight_quota_remaining (Gauge): Requests left for the API key in the current window
//   - sunlight_quota_blocks_total (Counter): Requests refused locally on an exhausted quota
//   - sunlight_quota_throttles_total (Counter): Requests delayed on a low quota
//
// Example Prometheus Queries:
//
//   # Records per page
//   rate(sunlight_records_yielded_total[5m]) / rate(sunlight_pages_fetched_total[5m])
//
//   # Quota running low
//   sunlight_quota_remaining < 50
//
//   # Request Error Rate
//   rate(sunlight_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(sunlight_request_duration_seconds_bucket[5m]))
