// Package sample turns classified Cassandra measurements into Prometheus
// families.
//
// Counters become gauges (the value is an absolute count at observation
// time), gauges stay gauges, histograms and timers become summaries with six
// quantiles and a count, and meters become counters named <name>_total.
package sample

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Sternrassler/cassandra-exporter/pkg/classify"
	"github.com/Sternrassler/cassandra-exporter/pkg/family"
	"github.com/Sternrassler/cassandra-exporter/pkg/registry"
)

// Timer quantiles are nanoseconds; exported values are seconds.
const timerFactor = 1e-9

// ErrUnsupportedGaugeValue is returned when a gauge holds a value that is
// neither numeric nor boolean.
var ErrUnsupportedGaugeValue = errors.New("unsupported gauge value type")

// quantileLabels are the exported quantiles, in output order.
var quantileLabels = []string{"0.5", "0.75", "0.95", "0.98", "0.99", "0.999"}

// Help returns the help text for a measurement.
func Help(identifier string, measurement any) string {
	return fmt.Sprintf("Generated from Cassandra metric import (metric=%s, type=%T)", identifier, measurement)
}

// FromCounter exports a counter as a single-sample gauge.
func FromCounter(d classify.Descriptor, c registry.Counter) *family.Family {
	return single(d, family.Gauge, Help(d.Identifier, c), float64(c.Count()))
}

// FromGauge exports a gauge. Numeric and boolean values yield one sample;
// any other value yields a family without samples together with
// ErrUnsupportedGaugeValue.
func FromGauge(d classify.Descriptor, g registry.Gauge) (*family.Family, error) {
	help := Help(d.Identifier, g)
	raw := g.Value()

	value, ok := toFloat(raw)
	if !ok {
		return &family.Family{Name: d.Name, Type: family.Gauge, Help: help},
			fmt.Errorf("%w: gauge %s holds %T", ErrUnsupportedGaugeValue, d.Name, raw)
	}
	return single(d, family.Gauge, help, value), nil
}

// FromHistogram exports a histogram as a summary.
func FromHistogram(d classify.Descriptor, h registry.Histogram) *family.Family {
	return summary(d, h.Quantiles(), h.Count(), 1.0, Help(d.Identifier, h))
}

// FromTimer exports a timer as a summary in seconds.
func FromTimer(d classify.Descriptor, t registry.Timer) *family.Family {
	return summary(d, t.Quantiles(), t.Count(), timerFactor, Help(d.Identifier, t))
}

// FromMeter exports a meter's cumulative count as a counter.
func FromMeter(d classify.Descriptor, m registry.Meter) *family.Family {
	name := d.Name + "_total"
	return &family.Family{
		Name: name,
		Type: family.Counter,
		Help: Help(d.Identifier, m),
		Samples: []family.Sample{{
			Name:        name,
			LabelNames:  d.LabelNames,
			LabelValues: d.LabelValues,
			Value:       float64(m.Count()),
		}},
	}
}

func single(d classify.Descriptor, typ family.Type, help string, value float64) *family.Family {
	return &family.Family{
		Name: d.Name,
		Type: typ,
		Help: help,
		Samples: []family.Sample{{
			Name:        d.Name,
			LabelNames:  d.LabelNames,
			LabelValues: d.LabelValues,
			Value:       value,
		}},
	}
}

func summary(d classify.Descriptor, q registry.Quantiles, count int64, factor float64, help string) *family.Family {
	values := []float64{q.P50, q.P75, q.P95, q.P98, q.P99, q.P999}

	samples := make([]family.Sample, 0, len(values)+1)
	for i, v := range values {
		names, labelValues := d.LabelsWith("quantile", quantileLabels[i])
		samples = append(samples, family.Sample{
			Name:        d.Name,
			LabelNames:  names,
			LabelValues: labelValues,
			Value:       v * factor,
		})
	}
	samples = append(samples, family.Sample{
		Name:        d.Name + "_count",
		LabelNames:  d.LabelNames,
		LabelValues: d.LabelValues,
		Value:       float64(count),
	})

	return &family.Family{
		Name:    d.Name,
		Type:    family.Summary,
		Help:    help,
		Samples: samples,
	}
}

// toFloat converts numeric and boolean gauge values.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
