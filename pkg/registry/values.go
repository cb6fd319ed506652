package registry

import "sync/atomic"

// StaticCount is a fixed count. It satisfies Counter and Meter.
type StaticCount int64

// Count implements Counter and Meter.
func (c StaticCount) Count() int64 { return int64(c) }

// StaticGauge is a fixed gauge value.
type StaticGauge struct {
	V any
}

// Value implements Gauge.
func (g StaticGauge) Value() any { return g.V }

// GaugeFunc reads its value on every call.
type GaugeFunc func() any

// Value implements Gauge.
func (f GaugeFunc) Value() any { return f() }

// StaticDistribution is a fixed distribution snapshot. It satisfies
// Histogram and Timer.
type StaticDistribution struct {
	N int64
	Q Quantiles
}

// Count implements Histogram and Timer.
func (d StaticDistribution) Count() int64 { return d.N }

// Quantiles implements Histogram and Timer.
func (d StaticDistribution) Quantiles() Quantiles { return d.Q }

// AtomicCounter is a counter that can be incremented concurrently.
type AtomicCounter struct {
	n atomic.Int64
}

// Inc adds delta to the counter.
func (c *AtomicCounter) Inc(delta int64) { c.n.Add(delta) }

// Count implements Counter and Meter.
func (c *AtomicCounter) Count() int64 { return c.n.Load() }
