package jolokia

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Sternrassler/cassandra-exporter/pkg/metrics"
)

var factory = promauto.With(metrics.Registry)

var (
	requestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "cassandra_exporter_jolokia_requests_total",
		Help: "Total Jolokia read requests by outcome",
	}, []string{"status"})

	requestDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "cassandra_exporter_jolokia_request_duration_seconds",
		Help:    "Jolokia read request duration in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	retriesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "cassandra_exporter_jolokia_retries_total",
		Help: "Total number of Jolokia retry attempts by error class",
	}, []string{"error_class"})

	retryExhaustedTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "cassandra_exporter_jolokia_retry_exhausted_total",
		Help: "Total number of Jolokia reads that exhausted their retries by error class",
	}, []string{"error_class"})
)
