package jolokia

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sternrassler/cassandra-exporter/pkg/registry"
)

// Measurements decoded from MBean attributes. Their type names end up in
// the help text of the exported families.

// Counter is a JmxCounterMBean.
type Counter struct{ N int64 }

// Count implements registry.Counter.
func (c Counter) Count() int64 { return c.N }

// Gauge is a JmxGaugeMBean. Numbers are kept as json.Number.
type Gauge struct{ V any }

// Value implements registry.Gauge.
func (g Gauge) Value() any { return g.V }

// Histogram is a JmxHistogramMBean.
type Histogram struct {
	N int64
	Q registry.Quantiles
}

// Count implements registry.Histogram.
func (h Histogram) Count() int64 { return h.N }

// Quantiles implements registry.Histogram.
func (h Histogram) Quantiles() registry.Quantiles { return h.Q }

// Timer is a JmxTimerMBean with quantiles converted to nanoseconds.
type Timer struct {
	N int64
	Q registry.Quantiles
}

// Count implements registry.Timer.
func (t Timer) Count() int64 { return t.N }

// Quantiles implements registry.Timer.
func (t Timer) Quantiles() registry.Quantiles { return t.Q }

// Meter is a JmxMeterMBean.
type Meter struct{ N int64 }

// Count implements registry.Meter.
func (m Meter) Count() int64 { return m.N }

// Attribute names of the Cassandra metric MBeans.
const (
	attrCount        = "Count"
	attrValue        = "Value"
	attrMeanRate     = "MeanRate"
	attrDurationUnit = "DurationUnit"
	attrP50          = "50thPercentile"
)

var percentileAttrs = [...]string{
	"50thPercentile",
	"75thPercentile",
	"95thPercentile",
	"98thPercentile",
	"99thPercentile",
	"999thPercentile",
}

// ErrUnknownShape is returned for an MBean whose attributes match no
// metric kind.
var ErrUnknownShape = errors.New("unknown mbean attribute set")

// nanosPer maps lower-cased TimeUnit names to nanoseconds.
var nanosPer = map[string]float64{
	"nanoseconds":  1,
	"microseconds": 1e3,
	"milliseconds": 1e6,
	"seconds":      1e9,
	"minutes":      60e9,
	"hours":        3600e9,
	"days":         86400e9,
}

// addBean decodes one MBean's attributes into the matching snapshot map.
//
// Timers carry DurationUnit and percentiles, histograms percentiles only,
// meters MeanRate, gauges Value and counters Count.
func addBean(s *registry.Snapshot, name string, attrs map[string]any) error {
	_, hasPercentiles := attrs[attrP50]
	_, hasUnit := attrs[attrDurationUnit]
	_, hasRate := attrs[attrMeanRate]
	value, hasValue := attrs[attrValue]
	_, hasCount := attrs[attrCount]

	switch {
	case hasPercentiles && hasUnit:
		unit, _ := attrs[attrDurationUnit].(string)
		factor, ok := nanosPer[strings.ToLower(unit)]
		if !ok {
			return fmt.Errorf("%s: unsupported duration unit %q", name, unit)
		}
		n, q, err := distribution(attrs, factor)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		s.Timers[name] = Timer{N: n, Q: q}
	case hasPercentiles:
		n, q, err := distribution(attrs, 1)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		s.Histograms[name] = Histogram{N: n, Q: q}
	case hasRate:
		n, err := toInt64(attrs[attrCount])
		if err != nil {
			return fmt.Errorf("%s: %s: %w", name, attrCount, err)
		}
		s.Meters[name] = Meter{N: n}
	case hasValue:
		s.Gauges[name] = Gauge{V: value}
	case hasCount:
		n, err := toInt64(attrs[attrCount])
		if err != nil {
			return fmt.Errorf("%s: %s: %w", name, attrCount, err)
		}
		s.Counters[name] = Counter{N: n}
	default:
		return fmt.Errorf("%s: %w", name, ErrUnknownShape)
	}
	return nil
}

func distribution(attrs map[string]any, factor float64) (int64, registry.Quantiles, error) {
	n, err := toInt64(attrs[attrCount])
	if err != nil {
		return 0, registry.Quantiles{}, fmt.Errorf("%s: %w", attrCount, err)
	}

	var values [len(percentileAttrs)]float64
	for i, attr := range percentileAttrs {
		v, err := toFloat64(attrs[attr])
		if err != nil {
			return 0, registry.Quantiles{}, fmt.Errorf("%s: %w", attr, err)
		}
		values[i] = v * factor
	}

	return n, registry.Quantiles{
		P50:  values[0],
		P75:  values[1],
		P95:  values[2],
		P98:  values[3],
		P99:  values[4],
		P999: values[5],
	}, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		return int64(f), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

// toFloat64 also accepts the strings Jolokia uses for NaN and infinities.
func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Float64()
	case float64:
		return n, nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
