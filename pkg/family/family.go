// Package family holds the exposed metric model (families of samples),
// merges samples that resolve to the same family, and renders families in
// the Prometheus text exposition format.
package family

import (
	"errors"
	"fmt"
	"sort"
)

// Type is the declared Prometheus type of a family.
type Type int

const (
	// Gauge is a point-in-time value.
	Gauge Type = iota
	// Counter is a cumulative count.
	Counter
	// Summary is a set of quantiles plus a count.
	Summary
)

// String returns the type as written in a # TYPE line.
func (t Type) String() string {
	switch t {
	case Gauge:
		return "gauge"
	case Counter:
		return "counter"
	case Summary:
		return "summary"
	default:
		return "untyped"
	}
}

// Sample is one exposed value.
type Sample struct {
	Name        string
	LabelNames  []string
	LabelValues []string
	Value       float64
}

// Family is a named, typed group of samples sharing label names.
type Family struct {
	Name    string
	Type    Type
	Help    string
	Samples []Sample
}

// ErrTypeConflict is returned when two families share a name but not a type.
var ErrTypeConflict = errors.New("family type conflict")

// Aggregator merges families by name. It is not safe for concurrent use;
// each collection pass owns its own aggregator.
type Aggregator struct {
	families map[string]*Family
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		families: make(map[string]*Family),
	}
}

// Add merges f into the aggregator. If a family with the same name exists,
// f's samples are appended to it; otherwise f becomes the entry. A family
// whose type differs from the existing entry is rejected with
// ErrTypeConflict and the existing entry is kept.
func (a *Aggregator) Add(f *Family) error {
	existing, ok := a.families[f.Name]
	if !ok {
		a.families[f.Name] = f
		return nil
	}
	if existing.Type != f.Type {
		return fmt.Errorf("%w: %s is %s, got %s", ErrTypeConflict, f.Name, existing.Type, f.Type)
	}
	existing.Samples = append(existing.Samples, f.Samples...)
	return nil
}

// Len returns the number of families.
func (a *Aggregator) Len() int {
	return len(a.families)
}

// Families returns the merged families sorted by name.
func (a *Aggregator) Families() []*Family {
	out := make([]*Family, 0, len(a.families))
	for _, f := range a.families {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
