package family

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gauge(name string, values ...string) *Family {
	f := &Family{Name: name, Type: Gauge, Help: "help"}
	for i, v := range values {
		f.Samples = append(f.Samples, Sample{
			Name:        name,
			LabelNames:  []string{"cache"},
			LabelValues: []string{v},
			Value:       float64(i),
		})
	}
	return f
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "gauge", Gauge.String())
	assert.Equal(t, "counter", Counter.String())
	assert.Equal(t, "summary", Summary.String())
	assert.Equal(t, "untyped", Type(42).String())
}

func TestAggregator_MergesSameName(t *testing.T) {
	a := NewAggregator()

	require.NoError(t, a.Add(gauge("cassandra_cache_hit_rate", "ChunkCache")))
	require.NoError(t, a.Add(gauge("cassandra_cache_hit_rate", "KeyCache", "RowCache")))
	require.NoError(t, a.Add(gauge("cassandra_storage_load")))

	families := a.Families()
	require.Len(t, families, 2)
	assert.Equal(t, 2, a.Len())

	// Sorted by name.
	assert.Equal(t, "cassandra_cache_hit_rate", families[0].Name)
	assert.Equal(t, "cassandra_storage_load", families[1].Name)

	// Extended, not replaced: 1 + 2 samples.
	require.Len(t, families[0].Samples, 3)
	assert.Equal(t, []string{"ChunkCache"}, families[0].Samples[0].LabelValues)
	assert.Equal(t, []string{"KeyCache"}, families[0].Samples[1].LabelValues)
	assert.Equal(t, []string{"RowCache"}, families[0].Samples[2].LabelValues)
}

func TestAggregator_TypeConflict(t *testing.T) {
	a := NewAggregator()
	require.NoError(t, a.Add(gauge("cassandra_x", "a")))

	err := a.Add(&Family{Name: "cassandra_x", Type: Summary, Samples: []Sample{{Name: "cassandra_x"}}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeConflict))

	families := a.Families()
	require.Len(t, families, 1)
	assert.Equal(t, Gauge, families[0].Type)
	assert.Len(t, families[0].Samples, 1)
}

func TestAggregator_Empty(t *testing.T) {
	a := NewAggregator()
	assert.Empty(t, a.Families())
	assert.Equal(t, 0, a.Len())
}

func TestWriteText(t *testing.T) {
	families := []*Family{
		{
			Name: "cassandra_read_latency",
			Type: Summary,
			Help: "Generated from Cassandra metric import (metric=a, type=b)",
			Samples: []Sample{
				{
					Name:        "cassandra_read_latency",
					LabelNames:  []string{"keyspace", "table", "quantile"},
					LabelValues: []string{"ks", "tbl", "0.5"},
					Value:       0.00025,
				},
				{
					Name:        "cassandra_read_latency_count",
					LabelNames:  []string{"keyspace", "table"},
					LabelValues: []string{"ks", "tbl"},
					Value:       42,
				},
			},
		},
		{
			Name:    "cassandra_storage_load",
			Type:    Gauge,
			Help:    "line one\nline two with \\",
			Samples: []Sample{{Name: "cassandra_storage_load", Value: 1.5e9}},
		},
		{
			Name: "cassandra_empty",
			Type: Gauge,
			Help: "no samples",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, families))

	want := `# HELP cassandra_read_latency Generated from Cassandra metric import (metric=a, type=b)
# TYPE cassandra_read_latency summary
cassandra_read_latency{keyspace="ks",table="tbl",quantile="0.5"} 0.00025
cassandra_read_latency_count{keyspace="ks",table="tbl"} 42
# HELP cassandra_storage_load line one\nline two with \\
# TYPE cassandra_storage_load gauge
cassandra_storage_load 1.5e+09
# HELP cassandra_empty no samples
# TYPE cassandra_empty gauge
`
	assert.Equal(t, want, buf.String())
}

func TestWriteText_EscapesLabelValues(t *testing.T) {
	families := []*Family{{
		Name: "cassandra_x",
		Type: Counter,
		Samples: []Sample{{
			Name:        "cassandra_x_total",
			LabelNames:  []string{"pool"},
			LabelValues: []string{"a\"b\\c\nd"},
			Value:       1,
		}},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, families))
	assert.Contains(t, buf.String(), `cassandra_x_total{pool="a\"b\\c\nd"} 1`)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "+Inf", formatFloat(math.Inf(1)))
	assert.Equal(t, "-Inf", formatFloat(math.Inf(-1)))
	assert.Equal(t, "NaN", formatFloat(math.NaN()))
	assert.Equal(t, "0", formatFloat(0))
	assert.Equal(t, "12345", formatFloat(12345))
	assert.Equal(t, "0.001", formatFloat(0.001))
}
