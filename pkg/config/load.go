package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CASSANDRA_EXPORTER_"

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and environment overrides, then validates it.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies CASSANDRA_EXPORTER_* variables. Unlike unset
// variables, malformed values are errors.
func applyEnvOverrides(cfg *Config) error {
	str := func(name string, dst *string) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok && val != "" {
			*dst = val
		}
	}

	var errs []string
	duration := func(name string, dst *time.Duration) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok && val != "" {
			d, err := time.ParseDuration(val)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}
	integer := func(name string, dst *int) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok && val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
				return
			}
			*dst = i
		}
	}
	boolean := func(name string, dst *bool) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok && val != "" {
			b, err := strconv.ParseBool(val)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("LISTEN", &cfg.Listen)
	str("METRICS_PATH", &cfg.MetricsPath)
	if val := os.Getenv(EnvPrefix + "GENERIC_TYPES"); val != "" {
		cfg.GenericTypes = splitList(val)
	}

	str("JOLOKIA_URL", &cfg.Jolokia.URL)
	str("JOLOKIA_MBEAN", &cfg.Jolokia.MBean)
	str("JOLOKIA_USERNAME", &cfg.Jolokia.Username)
	str("JOLOKIA_PASSWORD", &cfg.Jolokia.Password)
	duration("JOLOKIA_TIMEOUT", &cfg.Jolokia.Timeout)
	integer("JOLOKIA_MAX_ATTEMPTS", &cfg.Jolokia.MaxAttempts)
	duration("JOLOKIA_INITIAL_BACKOFF", &cfg.Jolokia.InitialBackoff)

	str("REDIS_ADDR", &cfg.Cache.RedisAddr)
	str("REDIS_PASSWORD", &cfg.Cache.RedisPassword)
	integer("REDIS_DB", &cfg.Cache.RedisDB)
	duration("CACHE_TTL", &cfg.Cache.TTL)

	str("LOG_LEVEL", &cfg.Log.Level)
	boolean("LOG_PRETTY", &cfg.Log.Pretty)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment overrides: %s", strings.Join(errs, "; "))
	}
	return nil
}

// splitList splits a comma-separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
