// Package metrics holds the Prometheus registry used for the exporter's own
// metrics. The metrics themselves are declared with promauto in the
// packages that update them (collector, jolokia, cache) so that no package
// depends on another just to reach a metric.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the registerer every self-metric is registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer exposes the same registry for scraping. Besides the self-metrics
// it carries the Go runtime and process collectors.
var Gatherer = prometheus.DefaultGatherer

// Self-metrics
//
// Collector (pkg/collector):
//   - cassandra_exporter_scrape_duration_seconds (Histogram): Collect pass duration
//   - cassandra_exporter_identifiers_suppressed_total{reason} (Counter): Identifiers not exported, by reason
//   - cassandra_exporter_families (Gauge): Families produced by the last pass
//   - cassandra_exporter_source_up (Gauge): 1 if the last snapshot succeeded
//
// Jolokia source (pkg/jolokia):
//   - cassandra_exporter_jolokia_requests_total{status} (Counter): Agent requests by outcome
//   - cassandra_exporter_jolokia_request_duration_seconds (Histogram): Agent request duration
//   - cassandra_exporter_jolokia_retries_total{error_class} (Counter): Retry attempts by error class
//   - cassandra_exporter_jolokia_retry_exhausted_total{error_class} (Counter): Requests that exhausted retries
//
// Response cache (pkg/cache):
//   - cassandra_exporter_cache_hits_total (Counter)
//   - cassandra_exporter_cache_misses_total (Counter)
//   - cassandra_exporter_cache_size_bytes (Gauge): Size of the last stored response
//   - cassandra_exporter_cache_errors_total{operation} (Counter)
//
// Example queries:
//
//   # Identifiers dropped because the rule table does not know them
//   rate(cassandra_exporter_identifiers_suppressed_total{reason="unrecognized_category"}[5m])
//
//   # Scrape latency
//   histogram_quantile(0.95, rate(cassandra_exporter_scrape_duration_seconds_bucket[5m]))
//
//   # Cache hit rate
//   rate(cassandra_exporter_cache_hits_total[5m]) /
//   (rate(cassandra_exporter_cache_hits_total[5m]) + rate(cassandra_exporter_cache_misses_total[5m]))
