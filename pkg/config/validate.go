package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Sternrassler/cassandra-exporter/pkg/logging"
)

// HealthPath is reserved for the health endpoint.
const HealthPath = "/health"

// Validate checks the configuration and reports every problem found.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := ParseListen(cfg.Listen); err != nil {
		errs = append(errs, err)
	}

	switch {
	case !strings.HasPrefix(cfg.MetricsPath, "/"):
		errs = append(errs, fmt.Errorf("metrics_path must start with '/' (got %q)", cfg.MetricsPath))
	case cfg.MetricsPath == HealthPath:
		errs = append(errs, fmt.Errorf("metrics_path must not be %s", HealthPath))
	}

	if u, err := url.Parse(cfg.Jolokia.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("jolokia.url must be an http(s) URL (got %q)", cfg.Jolokia.URL))
	}
	if cfg.Jolokia.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("jolokia.timeout must be positive (got %s)", cfg.Jolokia.Timeout))
	}
	if cfg.Jolokia.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("jolokia.max_attempts must be >= 1 (got %d)", cfg.Jolokia.MaxAttempts))
	}
	if cfg.Jolokia.InitialBackoff < 0 {
		errs = append(errs, fmt.Errorf("jolokia.initial_backoff must not be negative (got %s)", cfg.Jolokia.InitialBackoff))
	}

	if cfg.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must not be negative (got %s)", cfg.Cache.TTL))
	}
	if cfg.Cache.RedisDB < 0 {
		errs = append(errs, fmt.Errorf("cache.redis_db must not be negative (got %d)", cfg.Cache.RedisDB))
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}
