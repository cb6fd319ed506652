package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Sternrassler/cassandra-exporter/pkg/metrics"
)

var factory = promauto.With(metrics.Registry)

var (
	// CacheHits tracks responses served from Redis.
	CacheHits = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "cassandra_exporter_cache_hits_total",
			Help: "Total number of Jolokia responses served from the cache",
		},
	)

	// CacheMisses tracks lookups that had to go to the agent.
	CacheMisses = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "cassandra_exporter_cache_misses_total",
			Help: "Total number of Jolokia response cache misses",
		},
	)

	// CacheSize tracks the size of the last stored response.
	CacheSize = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "cassandra_exporter_cache_size_bytes",
			Help: "Size of the last Jolokia response written to the cache in bytes",
		},
	)

	// CacheErrors tracks cache operation errors.
	CacheErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cassandra_exporter_cache_errors_total",
			Help: "Total number of response cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
