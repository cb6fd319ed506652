package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Sternrassler/cassandra-exporter/pkg/metrics"
)

var factory = promauto.With(metrics.Registry)

var (
	// ScrapeDuration tracks the duration of a full Collect pass.
	ScrapeDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cassandra_exporter_scrape_duration_seconds",
			Help:    "Duration of a Cassandra metrics collection pass in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// IdentifiersSuppressed counts identifiers that produced no samples
	// because of an error, by reason.
	IdentifiersSuppressed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cassandra_exporter_identifiers_suppressed_total",
			Help: "Total number of Cassandra metric identifiers not exported, by reason",
		},
		[]string{"reason"},
	)

	// Families tracks the number of families produced by the last pass.
	Families = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "cassandra_exporter_families",
			Help: "Number of metric families produced by the last collection pass",
		},
	)

	// SourceUp is 1 when the last snapshot of the source succeeded.
	SourceUp = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "cassandra_exporter_source_up",
			Help: "Whether the last snapshot of the Cassandra metrics source succeeded",
		},
	)
)
