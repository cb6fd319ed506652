// Package jolokia reads Cassandra's metric MBeans through a Jolokia agent
// and exposes them as a registry.Source.
//
// One scrape issues a single bulk read of every MBean in the metrics
// domain. Failed reads are retried with exponential backoff, and the raw
// response can be shared between exporter replicas through the Redis
// response cache.
package jolokia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/cassandra-exporter/pkg/cache"
	"github.com/Sternrassler/cassandra-exporter/pkg/classify"
	"github.com/Sternrassler/cassandra-exporter/pkg/logging"
	"github.com/Sternrassler/cassandra-exporter/pkg/registry"
)

// DefaultMBean selects every Cassandra metric MBean.
const DefaultMBean = classify.Domain + ":*"

// maxBodySize bounds the agent response read into memory.
const maxBodySize = 64 << 20

// Config holds the client configuration.
type Config struct {
	// URL of the Jolokia agent, e.g. http://localhost:8778/jolokia.
	URL string

	// MBean is the object name pattern to read.
	MBean string

	// Username and Password enable HTTP basic auth when Username is set.
	Username string
	Password string

	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration

	Retry RetryConfig

	// Cache is optional. When set, responses are shared through Redis.
	Cache *cache.Manager
}

// DefaultConfig returns a configuration for the agent at url.
func DefaultConfig(url string) Config {
	return Config{
		URL:     url,
		MBean:   DefaultMBean,
		Timeout: 5 * time.Second,
		Retry:   DefaultRetryConfig(),
	}
}

// Client reads metric MBeans from a Jolokia agent.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// New creates a new Jolokia client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("jolokia url is required")
	}
	if cfg.MBean == "" {
		cfg.MBean = DefaultMBean
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive (got %s)", cfg.Timeout)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:  cfg.Cache,
		config: cfg,
		logger: logging.NewLogger("jolokia").With().Str("endpoint", cfg.URL).Logger(),
	}, nil
}

// SetHTTPClient replaces the HTTP client, e.g. to add TLS settings or a
// proxying transport. The configured timeout is not applied to it.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// response is the Jolokia envelope of a read request.
type response struct {
	Status    int             `json:"status"`
	Error     string          `json:"error"`
	ErrorType string          `json:"error_type"`
	Value     json.RawMessage `json:"value"`
}

// Snapshot implements registry.Source. MBeans whose attributes cannot be
// decoded are skipped and logged; only a failed read is an error.
func (c *Client) Snapshot(ctx context.Context) (*registry.Snapshot, error) {
	beans, err := c.Read(ctx)
	if err != nil {
		return nil, err
	}

	s := registry.NewSnapshot()
	for name, attrs := range beans {
		if err := addBean(s, name, attrs); err != nil {
			c.logger.Debug().Err(err).Str("mbean", name).Msg("Skipping mbean")
		}
	}
	return s, nil
}

// Read returns the attributes of every MBean matching the configured
// pattern, keyed by object name. Numbers are decoded as json.Number.
func (c *Client) Read(ctx context.Context) (map[string]map[string]any, error) {
	key := cache.CacheKey{Endpoint: c.config.URL, MBean: c.config.MBean}

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			beans, decodeErr := decode(entry.Data)
			if decodeErr == nil {
				c.logger.Debug().Dur("age", entry.Age()).Msg("Serving read from cache")
				return beans, nil
			}
			c.logger.Warn().Err(decodeErr).Msg("Discarding undecodable cache entry")
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Msg("Cache get error")
		}
	}

	var (
		body  []byte
		beans map[string]map[string]any
	)
	err := retryWithBackoff(ctx, c.config.Retry, c.logger, func() error {
		var fetchErr error
		body, fetchErr = c.fetch(ctx)
		if fetchErr != nil {
			return fetchErr
		}
		beans, fetchErr = decode(body)
		return fetchErr
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.config.MBean, err)
	}

	if c.cache != nil {
		if err := c.cache.Store(ctx, key, body); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		}
	}

	return beans, nil
}

// fetch performs one HTTP round trip and returns the raw body of a 200
// response.
func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	start := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(start).Seconds())
	}()

	// ignoreErrors makes the agent report a failing attribute in place
	// instead of failing the whole pattern read.
	payload, err := json.Marshal(map[string]any{
		"type":   "read",
		"mbean":  c.config.MBean,
		"config": map[string]any{"ignoreErrors": true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{ErrorClass: ErrorClassClient, Message: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.Username != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues("network_error").Inc()
		return nil, &Error{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &Error{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyStatus(resp.StatusCode),
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		requestsTotal.WithLabelValues("network_error").Inc()
		return nil, &Error{ErrorClass: ErrorClassNetwork, Message: "read body", Err: err}
	}

	requestsTotal.WithLabelValues("200").Inc()
	c.logger.Debug().
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Read mbeans from agent")
	return body, nil
}

// decode parses a Jolokia envelope. An envelope status other than 200 is
// returned as *Error.
func decode(body []byte) (map[string]map[string]any, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{ErrorClass: ErrorClassDecode, Message: "invalid envelope", Err: err}
	}

	if resp.Status != http.StatusOK {
		msg := resp.Error
		if msg == "" {
			msg = resp.ErrorType
		}
		return nil, &Error{
			StatusCode: resp.Status,
			ErrorClass: classifyStatus(resp.Status),
			Message:    msg,
		}
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Value))
	dec.UseNumber()

	var beans map[string]map[string]any
	if err := dec.Decode(&beans); err != nil {
		return nil, &Error{StatusCode: resp.Status, ErrorClass: ErrorClassDecode, Message: "invalid value", Err: err}
	}
	return beans, nil
}
