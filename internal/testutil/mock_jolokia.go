// Package testutil provides test doubles for the Jolokia agent.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for one mock agent response.
type MockResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration

	// FailsWithoutIgnoreErrors makes the agent answer with an error
	// envelope unless the request sets config.ignoreErrors, the way
	// Jolokia fails a pattern read when one attribute throws.
	FailsWithoutIgnoreErrors bool
}

// MockJolokia is a configurable mock Jolokia agent. Responses queued with
// Enqueue are served first, in order; afterwards every request gets the
// default response.
type MockJolokia struct {
	server *httptest.Server

	mu       sync.Mutex
	queue    []MockResponse
	fallback MockResponse

	// Tracking
	requestCount int
	lastRequest  map[string]any
	lastAuth     [2]string
}

// NewMockJolokia creates a mock agent that answers every read with an
// empty, successful envelope.
func NewMockJolokia() *MockJolokia {
	m := &MockJolokia{
		fallback: NewReadResponse(map[string]map[string]any{}),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.serve))
	return m
}

// URL returns the agent URL.
func (m *MockJolokia) URL() string {
	return m.server.URL + "/jolokia"
}

// Close shuts down the mock server.
func (m *MockJolokia) Close() {
	m.server.Close()
}

// SetDefault sets the response served when the queue is empty.
func (m *MockJolokia) SetDefault(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = resp
}

// Enqueue appends one-shot responses.
func (m *MockJolokia) Enqueue(resps ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resps...)
}

// RequestCount returns the number of requests made to the agent.
func (m *MockJolokia) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// LastRequest returns the decoded JSON body of the last request.
func (m *MockJolokia) LastRequest() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// LastBasicAuth returns the credentials of the last request.
func (m *MockJolokia) LastBasicAuth() (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastAuth[0], m.lastAuth[1]
}

func (m *MockJolokia) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req map[string]any
	_ = json.Unmarshal(body, &req)
	user, pass, _ := r.BasicAuth()

	m.mu.Lock()
	m.requestCount++
	m.lastRequest = req
	m.lastAuth = [2]string{user, pass}
	resp := m.fallback
	if len(m.queue) > 0 {
		resp = m.queue[0]
		m.queue = m.queue[1:]
	}
	m.mu.Unlock()

	if resp.FailsWithoutIgnoreErrors && !ignoresErrors(req) {
		resp = NewAgentErrorResponse(500, "javax.management.RuntimeMBeanException", "attribute read failed")
	}

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewReadResponse creates a successful bulk read response.
func NewReadResponse(beans map[string]map[string]any) MockResponse {
	body, err := json.Marshal(map[string]any{
		"request":   map[string]any{"type": "read", "mbean": "org.apache.cassandra.metrics:*"},
		"value":     beans,
		"status":    200,
		"timestamp": time.Now().Unix(),
	})
	if err != nil {
		panic(err)
	}
	return MockResponse{
		StatusCode:               http.StatusOK,
		Body:                     string(body),
		FailsWithoutIgnoreErrors: hasAttributeError(beans),
	}
}

// AttributeError is the value Jolokia reports in place of an attribute that
// threw while being read with ignoreErrors set.
func AttributeError(msg string) string {
	return "ERROR: " + msg
}

func hasAttributeError(beans map[string]map[string]any) bool {
	for _, attrs := range beans {
		for _, v := range attrs {
			if s, ok := v.(string); ok && strings.HasPrefix(s, "ERROR: ") {
				return true
			}
		}
	}
	return false
}

func ignoresErrors(req map[string]any) bool {
	cfg, _ := req["config"].(map[string]any)
	ignore, _ := cfg["ignoreErrors"].(bool)
	return ignore
}

// NewAgentErrorResponse creates a response whose HTTP status is 200 but
// whose Jolokia envelope reports status.
func NewAgentErrorResponse(status int, errorType, message string) MockResponse {
	body, err := json.Marshal(map[string]any{
		"status":     status,
		"error_type": errorType,
		"error":      message,
	})
	if err != nil {
		panic(err)
	}
	return MockResponse{StatusCode: http.StatusOK, Body: string(body)}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
	}
}

// NewUnauthorizedResponse creates a 401 response.
func NewUnauthorizedResponse() MockResponse {
	return MockResponse{StatusCode: http.StatusUnauthorized}
}

// TimerAttributes returns the attributes of a JmxTimerMBean whose
// percentiles are p, in unit.
func TimerAttributes(count int64, unit string, p [6]float64) map[string]any {
	attrs := HistogramAttributes(count, p)
	attrs["DurationUnit"] = unit
	attrs["RateUnit"] = "events/second"
	attrs["MeanRate"] = 1.5
	attrs["OneMinuteRate"] = 1.0
	return attrs
}

// HistogramAttributes returns the attributes of a JmxHistogramMBean.
func HistogramAttributes(count int64, p [6]float64) map[string]any {
	return map[string]any{
		"Count":           count,
		"Min":             p[0],
		"Max":             p[5],
		"Mean":            p[0],
		"StdDev":          0.0,
		"50thPercentile":  p[0],
		"75thPercentile":  p[1],
		"95thPercentile":  p[2],
		"98thPercentile":  p[3],
		"99thPercentile":  p[4],
		"999thPercentile": p[5],
	}
}

// MeterAttributes returns the attributes of a JmxMeterMBean.
func MeterAttributes(count int64) map[string]any {
	return map[string]any{
		"Count":             count,
		"MeanRate":          0.5,
		"OneMinuteRate":     0.2,
		"FiveMinuteRate":    0.1,
		"FifteenMinuteRate": 0.05,
		"RateUnit":          "events/second",
	}
}
