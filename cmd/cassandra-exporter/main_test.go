package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/cassandra-exporter/internal/testutil"
	"github.com/Sternrassler/cassandra-exporter/pkg/config"
)

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_DryRun(t *testing.T) {
	out, err := executeRoot(t, "--dry-run", "--listen", "9500", "--jolokia-url", "http://cassandra:8778/jolokia")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRootCmd_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad listen", []string{"--dry-run", "--listen", "99999"}},
		{"bad metrics path", []string{"--dry-run", "--metrics-path", "metrics"}},
		{"bad log level", []string{"--dry-run", "--log-level", "chatty"}},
		{"positional args", []string{"--dry-run", "extra"}},
		{"missing config file", []string{"--dry-run", "--config", "/nonexistent/config.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := executeRoot(t, tt.args...); err == nil {
				t.Error("Execute() should fail")
			}
		})
	}
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	t.Setenv("CASSANDRA_EXPORTER_LISTEN", "9100")
	t.Setenv("CASSANDRA_EXPORTER_LOG_LEVEL", "debug")

	cmd := newRootCmd()
	var flags rootFlags
	cmd.ResetFlags()
	cmd.Flags().StringVarP(&flags.listen, "listen", "l", "", "")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "")
	cmd.Flags().StringSliceVar(&flags.genericTypes, "generic-types", nil, "")
	if err := cmd.Flags().Parse([]string{"--listen", "127.0.0.1:9200", "--generic-types", "Paxos,TCM"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := loadConfig(cmd, &flags)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.Listen != "127.0.0.1:9200" {
		t.Errorf("Listen = %q, want flag value", cfg.Listen)
	}
	// Not set on the command line, so the environment wins.
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want env value", cfg.Log.Level)
	}
	if len(cfg.GenericTypes) != 2 {
		t.Errorf("GenericTypes = %v", cfg.GenericTypes)
	}
}

func testExporterConfig(url string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Jolokia.URL = url
	cfg.Jolokia.Timeout = 2 * time.Second
	cfg.Jolokia.MaxAttempts = 1
	return cfg
}

func scrape(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req.WithContext(ctx))
	body, _ := io.ReadAll(w.Result().Body)
	return w.Code, string(body)
}

func TestExporter_EndToEnd(t *testing.T) {
	mock := testutil.NewMockJolokia()
	defer mock.Close()
	mock.SetDefault(testutil.NewReadResponse(map[string]map[string]any{
		"org.apache.cassandra.metrics:type=Table,keyspace=ks,scope=users,name=ReadLatency": testutil.TimerAttributes(
			10, "microseconds", [6]float64{100, 200, 300, 400, 500, 600}),
		"org.apache.cassandra.metrics:type=Storage,name=Load":                          {"Value": 2048},
		"org.apache.cassandra.metrics:type=Keyspace,keyspace=ks,name=ReadLatency":      testutil.TimerAttributes(10, "microseconds", [6]float64{}),
		"org.apache.cassandra.metrics:type=ClientRequest,scope=Read,name=Timeouts":     testutil.MeterAttributes(3),
		"org.apache.cassandra.metrics:type=ClientRequest,scope=Read-ONE,name=Timeouts": testutil.MeterAttributes(1),
		"org.apache.cassandra.metrics:type=Table,name=ReadLatency":                     testutil.TimerAttributes(10, "microseconds", [6]float64{}),
		"org.apache.cassandra.metrics:type=Storage,name=Broken":                        {"Value": testutil.AttributeError("java.lang.NullPointerException")},
	}))

	exp, err := newExporter(context.Background(), testExporterConfig(mock.URL()))
	if err != nil {
		t.Fatalf("newExporter() error = %v", err)
	}
	defer exp.Close()

	h := exp.Routes("/metrics")
	code, body := scrape(t, h, "/metrics")
	if code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", code)
	}

	for _, want := range []string{
		"# TYPE cassandra_read_latency summary",
		`cassandra_read_latency{keyspace="ks",table="users",quantile="0.5"} `,
		`cassandra_read_latency_count{keyspace="ks",table="users"} 10`,
		"cassandra_storage_load 2048",
		`cassandra_client_request_timeouts_total{operation="read-one"} 1`,
		"cassandra_exporter_source_up 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}

	// Keyspace roll-ups and the aggregate Read scope are not exported.
	if strings.Contains(body, `operation="read"}`) || strings.Contains(body, `keyspace="ks"}`) {
		t.Errorf("suppressed identifiers leaked into output:\n%s", body)
	}

	// The all-tables roll-up is dropped without being counted as malformed.
	if strings.Contains(body, `reason="malformed_shape"`) {
		t.Errorf("roll-up counted as malformed:\n%s", body)
	}
	// A failed attribute costs only its own identifier.
	if !strings.Contains(body, `cassandra_exporter_identifiers_suppressed_total{reason="unsupported_gauge_value"} 1`) {
		t.Error("failed attribute should be counted as unsupported_gauge_value")
	}

	if code, body := scrape(t, h, "/health"); code != http.StatusOK || body != "OK" {
		t.Errorf("health = %d %q", code, body)
	}
}

func TestExporter_AgentDown(t *testing.T) {
	mock := testutil.NewMockJolokia()
	mock.SetDefault(testutil.NewServerErrorResponse())
	defer mock.Close()

	exp, err := newExporter(context.Background(), testExporterConfig(mock.URL()))
	if err != nil {
		t.Fatalf("newExporter() error = %v", err)
	}
	defer exp.Close()

	code, body := scrape(t, exp.Routes("/metrics"), "/metrics")
	if code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", code)
	}
	if !strings.Contains(body, "cassandra_exporter_source_up 0") {
		t.Error("Expected cassandra_exporter_source_up 0 when the agent fails")
	}
}

func TestExporter_RedisUnavailable(t *testing.T) {
	cfg := testExporterConfig("http://localhost:8778/jolokia")
	// Nothing listens on port 1.
	cfg.Cache.RedisAddr = "127.0.0.1:1"

	exp, err := newExporter(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newExporter() error = %v", err)
	}
	defer exp.Close()

	if exp.cached {
		t.Error("cache should be disabled when Redis is unreachable")
	}
}
