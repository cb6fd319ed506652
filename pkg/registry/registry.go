// Package registry defines the contract of a Cassandra metrics source and
// provides an in-memory implementation of it.
//
// A Source hands out a Snapshot: the current counters, gauges, histograms,
// timers and meters, keyed by their raw Cassandra identifier. Measurement
// access on a snapshot must not block.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Quantiles holds the fixed quantiles of a distribution snapshot.
type Quantiles struct {
	P50  float64
	P75  float64
	P95  float64
	P98  float64
	P99  float64
	P999 float64
}

// Counter is a monotonically increasing count.
type Counter interface {
	Count() int64
}

// Gauge is a point-in-time value of arbitrary type.
type Gauge interface {
	Value() any
}

// Histogram is a distribution of plain values.
type Histogram interface {
	Count() int64
	Quantiles() Quantiles
}

// Timer is a distribution of durations. Quantiles are in nanoseconds.
type Timer interface {
	Count() int64
	Quantiles() Quantiles
}

// Meter is a rate measurement; only its cumulative count is exported.
type Meter interface {
	Count() int64
}

// Snapshot is the set of measurements visible at one point in time.
type Snapshot struct {
	Counters   map[string]Counter
	Gauges     map[string]Gauge
	Histograms map[string]Histogram
	Timers     map[string]Timer
	Meters     map[string]Meter
}

// NewSnapshot returns a snapshot with all maps allocated.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Counters:   make(map[string]Counter),
		Gauges:     make(map[string]Gauge),
		Histograms: make(map[string]Histogram),
		Timers:     make(map[string]Timer),
		Meters:     make(map[string]Meter),
	}
}

// Len returns the total number of measurements in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.Counters) + len(s.Gauges) + len(s.Histograms) + len(s.Timers) + len(s.Meters)
}

// Source produces snapshots of a metrics registry.
type Source interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// ErrDuplicate is returned when an identifier is already registered.
var ErrDuplicate = errors.New("identifier already registered")

// Registry is an in-memory Source. Measurements are registered by
// identifier and read back through Snapshot.
type Registry struct {
	mu      sync.Mutex
	tracked *Snapshot
	names   map[string]struct{}
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		tracked: NewSnapshot(),
		names:   make(map[string]struct{}),
	}
}

func (r *Registry) add(name string, insert func(s *Snapshot)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	r.names[name] = struct{}{}
	insert(r.tracked)
	return nil
}

// RegisterCounter adds a counter under the given identifier.
func (r *Registry) RegisterCounter(name string, c Counter) error {
	return r.add(name, func(s *Snapshot) { s.Counters[name] = c })
}

// RegisterGauge adds a gauge under the given identifier.
func (r *Registry) RegisterGauge(name string, g Gauge) error {
	return r.add(name, func(s *Snapshot) { s.Gauges[name] = g })
}

// RegisterHistogram adds a histogram under the given identifier.
func (r *Registry) RegisterHistogram(name string, h Histogram) error {
	return r.add(name, func(s *Snapshot) { s.Histograms[name] = h })
}

// RegisterTimer adds a timer under the given identifier.
func (r *Registry) RegisterTimer(name string, t Timer) error {
	return r.add(name, func(s *Snapshot) { s.Timers[name] = t })
}

// RegisterMeter adds a meter under the given identifier.
func (r *Registry) RegisterMeter(name string, m Meter) error {
	return r.add(name, func(s *Snapshot) { s.Meters[name] = m })
}

// MustRegister panics if err is non-nil. It wraps the Register methods:
//
//	registry.MustRegister(r.RegisterCounter(name, c))
func MustRegister(err error) {
	if err != nil {
		panic(err)
	}
}

// Unregister removes the measurement with the given identifier. It
// reports whether anything was removed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[name]; !ok {
		return false
	}
	delete(r.names, name)
	delete(r.tracked.Counters, name)
	delete(r.tracked.Gauges, name)
	delete(r.tracked.Histograms, name)
	delete(r.tracked.Timers, name)
	delete(r.tracked.Meters, name)
	return true
}

// Snapshot implements Source. The returned maps are copies; the
// measurements themselves are shared.
func (r *Registry) Snapshot(_ context.Context) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := NewSnapshot()
	for k, v := range r.tracked.Counters {
		s.Counters[k] = v
	}
	for k, v := range r.tracked.Gauges {
		s.Gauges[k] = v
	}
	for k, v := range r.tracked.Histograms {
		s.Histograms[k] = v
	}
	for k, v := range r.tracked.Timers {
		s.Timers[k] = v
	}
	for k, v := range r.tracked.Meters {
		s.Meters[k] = v
	}
	return s, nil
}
