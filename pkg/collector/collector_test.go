package collector

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/cassandra-exporter/pkg/classify"
	"github.com/Sternrassler/cassandra-exporter/pkg/family"
	"github.com/Sternrassler/cassandra-exporter/pkg/registry"
)

const prefix = "org.apache.cassandra.metrics."

type failingSource struct{}

func (failingSource) Snapshot(context.Context) (*registry.Snapshot, error) {
	return nil, errors.New("agent unreachable")
}

func newCollector(t *testing.T, src registry.Source, logs io.Writer, opts ...Option) *Collector {
	t.Helper()
	if logs == nil {
		logs = io.Discard
	}
	return New(src, classify.New(classify.NewRules()), zerolog.New(logs), opts...)
}

func byName(families []*family.Family) map[string]*family.Family {
	out := make(map[string]*family.Family, len(families))
	for _, f := range families {
		out[f.Name] = f
	}
	return out
}

func TestCollect(t *testing.T) {
	r := registry.New()
	registry.MustRegister(r.RegisterGauge(prefix+"Cache.HitRate.KeyCache", registry.StaticGauge{V: 0.5}))
	registry.MustRegister(r.RegisterGauge(prefix+"Cache.HitRate.RowCache", registry.StaticGauge{V: 0.25}))
	registry.MustRegister(r.RegisterCounter(prefix+"Storage.TotalHints", registry.StaticCount(9)))
	registry.MustRegister(r.RegisterTimer(prefix+"Table.ReadLatency.ks.tbl", registry.StaticDistribution{
		N: 3,
		Q: registry.Quantiles{P50: 1e6, P75: 1e6, P95: 2e6, P98: 2e6, P99: 3e6, P999: 4e6},
	}))
	registry.MustRegister(r.RegisterMeter(prefix+"ClientRequest.Timeouts.CASRead", registry.StaticCount(4)))
	// Silently suppressed.
	registry.MustRegister(r.RegisterTimer(prefix+"Table.ReadLatency.all", registry.StaticDistribution{}))
	registry.MustRegister(r.RegisterMeter(prefix+"ClientRequest.Timeouts.Read", registry.StaticCount(1)))
	registry.MustRegister(r.RegisterGauge(prefix+"keyspace.LiveDiskSpaceUsed.ks", registry.StaticGauge{V: 1}))

	c := newCollector(t, r, nil)
	families, err := c.Collect(context.Background())
	require.NoError(t, err)

	got := byName(families)
	require.Len(t, got, 4)

	hitRate := got["cassandra_cache_hit_rate"]
	require.NotNil(t, hitRate)
	assert.Equal(t, family.Gauge, hitRate.Type)
	require.Len(t, hitRate.Samples, 2)
	// Identifiers are processed in sorted order.
	assert.Equal(t, []string{"KeyCache"}, hitRate.Samples[0].LabelValues)
	assert.Equal(t, []string{"RowCache"}, hitRate.Samples[1].LabelValues)

	hints := got["cassandra_storage_total_hints"]
	require.NotNil(t, hints)
	assert.Equal(t, family.Gauge, hints.Type)
	assert.Equal(t, 9.0, hints.Samples[0].Value)

	latency := got["cassandra_read_latency"]
	require.NotNil(t, latency)
	assert.Equal(t, family.Summary, latency.Type)
	require.Len(t, latency.Samples, 7)
	assert.InDelta(t, 0.001, latency.Samples[0].Value, 1e-12)

	timeouts := got["cassandra_client_request_timeouts_total"]
	require.NotNil(t, timeouts)
	assert.Equal(t, family.Counter, timeouts.Type)
	require.Len(t, timeouts.Samples, 1)
	assert.Equal(t, []string{"casread"}, timeouts.Samples[0].LabelValues)

	// Sorted by family name.
	for i := 1; i < len(families); i++ {
		assert.Less(t, families[i-1].Name, families[i].Name)
	}

	assert.Equal(t, 1.0, promtest.ToFloat64(SourceUp))
	assert.Equal(t, 4.0, promtest.ToFloat64(Families))
}

func TestCollect_EmptySource(t *testing.T) {
	c := newCollector(t, registry.New(), nil)
	families, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, families)
}

func TestCollect_SourceFailure(t *testing.T) {
	c := newCollector(t, failingSource{}, nil)
	families, err := c.Collect(context.Background())
	require.Error(t, err)
	assert.Nil(t, families)
	assert.Equal(t, 0.0, promtest.ToFloat64(SourceUp))
}

func TestCollect_FailOpen(t *testing.T) {
	r := registry.New()
	registry.MustRegister(r.RegisterGauge(prefix+"Storage.Load", registry.StaticGauge{V: int64(100)}))
	registry.MustRegister(r.RegisterGauge(prefix+"Storage.Panics", registry.GaugeFunc(func() any {
		panic("boom")
	})))
	registry.MustRegister(r.RegisterGauge(prefix+"Storage.Mode", registry.StaticGauge{V: "NORMAL"}))
	registry.MustRegister(r.RegisterCounter(prefix+"Table.ReadLatency.ks", registry.StaticCount(1)))
	registry.MustRegister(r.RegisterCounter(prefix+"Nonexistent.Thing", registry.StaticCount(1)))
	registry.MustRegister(r.RegisterCounter("com.example.Other", registry.StaticCount(1)))

	before := map[string]float64{}
	for _, reason := range []string{ReasonProcessingFailure, ReasonUnsupportedGaugeValue, "malformed_shape", "unrecognized_category"} {
		before[reason] = promtest.ToFloat64(IdentifiersSuppressed.WithLabelValues(reason))
	}

	c := newCollector(t, r, nil)
	families, err := c.Collect(context.Background())
	require.NoError(t, err)

	got := byName(families)
	require.Contains(t, got, "cassandra_storage_load")
	assert.Equal(t, 100.0, got["cassandra_storage_load"].Samples[0].Value)
	assert.NotContains(t, got, "cassandra_storage_panics")

	// Unsupported gauge values leave an empty family behind.
	require.Contains(t, got, "cassandra_storage_mode")
	assert.Empty(t, got["cassandra_storage_mode"].Samples)

	delta := func(reason string) float64 {
		return promtest.ToFloat64(IdentifiersSuppressed.WithLabelValues(reason)) - before[reason]
	}
	assert.Equal(t, 1.0, delta(ReasonProcessingFailure))
	assert.Equal(t, 1.0, delta(ReasonUnsupportedGaugeValue))
	assert.Equal(t, 1.0, delta("malformed_shape"))
	assert.Equal(t, 2.0, delta("unrecognized_category"))
}

func TestCollect_TypeConflictKeepsFirst(t *testing.T) {
	r := registry.New()
	registry.MustRegister(r.RegisterGauge(prefix+"Cache.Size.KeyCache", registry.StaticGauge{V: 10}))
	registry.MustRegister(r.RegisterHistogram(prefix+"Cache.Size.RowCache", registry.StaticDistribution{N: 1}))

	before := promtest.ToFloat64(IdentifiersSuppressed.WithLabelValues(ReasonTypeConflict))

	c := newCollector(t, r, nil)
	families, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, family.Gauge, families[0].Type)
	assert.Len(t, families[0].Samples, 1)

	assert.Equal(t, before+1, promtest.ToFloat64(IdentifiersSuppressed.WithLabelValues(ReasonTypeConflict)))
}

func TestCollect_LogsFirstOccurrenceAtWarn(t *testing.T) {
	r := registry.New()
	registry.MustRegister(r.RegisterCounter(prefix+"Nonexistent.Thing", registry.StaticCount(1)))

	var logs bytes.Buffer
	c := newCollector(t, r, &logs)

	for i := 0; i < 3; i++ {
		_, err := c.Collect(context.Background())
		require.NoError(t, err)
	}

	out := logs.String()
	assert.Equal(t, 1, strings.Count(out, `"level":"warn"`))
	assert.Equal(t, 2, strings.Count(out, `"level":"debug","error"`))
	assert.Contains(t, out, `"identifier":"org.apache.cassandra.metrics.Nonexistent.Thing"`)
	assert.Contains(t, out, `"reason":"unrecognized_category"`)
}

func TestCollect_Concurrent(t *testing.T) {
	r := registry.New()
	registry.MustRegister(r.RegisterGauge(prefix+"Cache.HitRate.KeyCache", registry.StaticGauge{V: 0.5}))
	registry.MustRegister(r.RegisterGauge(prefix+"Cache.HitRate.RowCache", registry.StaticGauge{V: 0.25}))
	c := newCollector(t, r, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			families, err := c.Collect(context.Background())
			assert.NoError(t, err)
			if assert.Len(t, families, 1) {
				// Every pass owns its aggregator, so samples never pile up.
				assert.Len(t, families[0].Samples, 2)
			}
		}()
	}
	wg.Wait()
}

func TestReason(t *testing.T) {
	assert.Equal(t, ReasonProcessingFailure, Reason(ErrProcessingFailure))
	assert.Equal(t, ReasonTypeConflict, Reason(family.ErrTypeConflict))
	assert.Equal(t, "illegal_name", Reason(&classify.Error{Err: classify.ErrIllegalName}))
	assert.Equal(t, "unknown", Reason(errors.New("other")))
}

func TestNew_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { New(nil, classify.New(classify.NewRules()), zerolog.Nop()) })
	assert.Panics(t, func() { New(registry.New(), nil, zerolog.Nop()) })
}

func staticGatherer(name string, value float64) prometheus.Gatherer {
	help := "Exporter build marker"
	typ := dto.MetricType_GAUGE
	return prometheus.GathererFunc(func() ([]*dto.MetricFamily, error) {
		return []*dto.MetricFamily{{
			Name:   &name,
			Help:   &help,
			Type:   &typ,
			Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: &value}}},
		}}, nil
	})
}

func TestHandler(t *testing.T) {
	r := registry.New()
	registry.MustRegister(r.RegisterGauge(prefix+"Storage.Load", registry.StaticGauge{V: 1.5e9}))

	c := newCollector(t, r, nil, WithGatherer(staticGatherer("cassandra_exporter_build_marker", 1)))
	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, family.ContentType, resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, "# TYPE cassandra_storage_load gauge\ncassandra_storage_load 1.5e+09\n")
	assert.Contains(t, text, "# TYPE cassandra_exporter_build_marker gauge\ncassandra_exporter_build_marker 1\n")
	// Cassandra families come first.
	assert.Less(t, strings.Index(text, "cassandra_storage_load"), strings.Index(text, "cassandra_exporter_build_marker"))
}

func TestHandler_SourceDown(t *testing.T) {
	c := newCollector(t, failingSource{}, nil, WithGatherer(nil))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, 0.0, promtest.ToFloat64(SourceUp))
}

func TestHandler_DefaultGathererIncludesSelfMetrics(t *testing.T) {
	c := newCollector(t, failingSource{}, nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Contains(t, rec.Body.String(), "cassandra_exporter_source_up 0")
}
