// Package collector runs one translation pass over a Cassandra metrics
// source and serves the result over HTTP.
package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/cassandra-exporter/pkg/classify"
	"github.com/Sternrassler/cassandra-exporter/pkg/family"
	"github.com/Sternrassler/cassandra-exporter/pkg/metrics"
	"github.com/Sternrassler/cassandra-exporter/pkg/registry"
	"github.com/Sternrassler/cassandra-exporter/pkg/sample"
)

// ErrProcessingFailure wraps a panic raised while processing one
// identifier.
var ErrProcessingFailure = errors.New("identifier processing failed")

// Suppression reasons, used as the reason label of
// cassandra_exporter_identifiers_suppressed_total.
const (
	ReasonUnsupportedGaugeValue = "unsupported_gauge_value"
	ReasonProcessingFailure     = "processing_failure"
	ReasonTypeConflict          = "type_conflict"
)

// Collector translates snapshots of a source into Prometheus families.
// It is safe for concurrent use; every Collect call works on its own
// aggregator.
type Collector struct {
	source     registry.Source
	classifier *classify.Classifier
	gatherer   prometheus.Gatherer
	logger     zerolog.Logger

	// seen holds identifiers that were already reported once.
	seen sync.Map
}

// Option configures a Collector.
type Option func(*Collector)

// WithGatherer sets the gatherer whose families are appended to the
// handler output. Defaults to metrics.Gatherer; nil disables it.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *Collector) {
		c.gatherer = g
	}
}

// New creates a collector.
func New(source registry.Source, classifier *classify.Classifier, logger zerolog.Logger, opts ...Option) *Collector {
	if source == nil {
		panic("source cannot be nil")
	}
	if classifier == nil {
		panic("classifier cannot be nil")
	}

	c := &Collector{
		source:     source,
		classifier: classifier,
		gatherer:   metrics.Gatherer,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect takes a snapshot of the source and translates it. Identifiers
// are processed by kind (gauges, counters, histograms, timers, meters) and
// in sorted order within a kind. Failures of single identifiers are logged
// and counted; only a failing snapshot is returned as an error.
func (c *Collector) Collect(ctx context.Context) ([]*family.Family, error) {
	start := time.Now()
	defer func() {
		ScrapeDuration.Observe(time.Since(start).Seconds())
	}()

	snap, err := c.source.Snapshot(ctx)
	if err != nil {
		SourceUp.Set(0)
		return nil, fmt.Errorf("snapshot source: %w", err)
	}
	SourceUp.Set(1)

	agg := family.NewAggregator()

	for _, id := range slices.Sorted(maps.Keys(snap.Gauges)) {
		g := snap.Gauges[id]
		c.process(agg, id, func(d classify.Descriptor) (*family.Family, error) {
			return sample.FromGauge(d, g)
		})
	}
	for _, id := range slices.Sorted(maps.Keys(snap.Counters)) {
		m := snap.Counters[id]
		c.process(agg, id, func(d classify.Descriptor) (*family.Family, error) {
			return sample.FromCounter(d, m), nil
		})
	}
	for _, id := range slices.Sorted(maps.Keys(snap.Histograms)) {
		h := snap.Histograms[id]
		c.process(agg, id, func(d classify.Descriptor) (*family.Family, error) {
			return sample.FromHistogram(d, h), nil
		})
	}
	for _, id := range slices.Sorted(maps.Keys(snap.Timers)) {
		t := snap.Timers[id]
		c.process(agg, id, func(d classify.Descriptor) (*family.Family, error) {
			return sample.FromTimer(d, t), nil
		})
	}
	for _, id := range slices.Sorted(maps.Keys(snap.Meters)) {
		m := snap.Meters[id]
		c.process(agg, id, func(d classify.Descriptor) (*family.Family, error) {
			return sample.FromMeter(d, m), nil
		})
	}

	Families.Set(float64(agg.Len()))
	c.logger.Debug().
		Int("identifiers", snap.Len()).
		Int("families", agg.Len()).
		Dur("duration", time.Since(start)).
		Msg("Collection pass complete")

	return agg.Families(), nil
}

// process classifies, builds and aggregates one identifier. A panic in any
// step is recovered and reported as a processing failure.
func (c *Collector) process(agg *family.Aggregator, id string, build func(classify.Descriptor) (*family.Family, error)) {
	defer func() {
		if r := recover(); r != nil {
			c.report(id, fmt.Errorf("%w: %v", ErrProcessingFailure, r))
		}
	}()

	d, err := c.classifier.Classify(id)
	if err != nil {
		c.report(id, err)
		return
	}
	if !d.Reportable {
		return
	}

	f, err := build(d)
	if err != nil {
		c.report(id, err)
	}
	if f == nil {
		return
	}

	if err := agg.Add(f); err != nil {
		c.report(id, err)
	}
}

// report counts a failure and logs it. The first failure of an identifier
// is logged at warn level, repeats at debug level.
func (c *Collector) report(id string, err error) {
	reason := Reason(err)
	IdentifiersSuppressed.WithLabelValues(reason).Inc()

	event := c.logger.Debug()
	if _, loaded := c.seen.LoadOrStore(id, struct{}{}); !loaded {
		event = c.logger.Warn()
	}
	event.
		Err(err).
		Str("identifier", id).
		Str("reason", reason).
		Msg("Metric not exported")
}

// Reason maps a collection failure to its reason label.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrProcessingFailure):
		return ReasonProcessingFailure
	case errors.Is(err, sample.ErrUnsupportedGaugeValue):
		return ReasonUnsupportedGaugeValue
	case errors.Is(err, family.ErrTypeConflict):
		return ReasonTypeConflict
	default:
		return classify.Reason(err)
	}
}

// Handler serves the translated families followed by the families of the
// configured gatherer. A failing source still answers 200 with
// cassandra_exporter_source_up set to 0.
func (c *Collector) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer

		families, err := c.Collect(r.Context())
		if err != nil {
			c.logger.Error().Err(err).Msg("Cassandra metrics source unavailable")
		}
		if err := family.WriteText(&buf, families); err != nil {
			c.logger.Error().Err(err).Msg("Failed to encode Cassandra metrics")
			http.Error(w, "encoding failed", http.StatusInternalServerError)
			return
		}

		if c.gatherer != nil {
			gathered, err := c.gatherer.Gather()
			if err != nil {
				// Gather returns what it could collect alongside the error.
				c.logger.Warn().Err(err).Msg("Failed to gather exporter metrics")
			}
			for _, mf := range gathered {
				if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
					c.logger.Warn().Err(err).Str("family", mf.GetName()).Msg("Failed to encode exporter metric")
				}
			}
		}

		w.Header().Set("Content-Type", family.ContentType)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf.Bytes()); err != nil {
			c.logger.Debug().Err(err).Msg("Failed to write metrics response")
		}
	})
}
