// Package config loads the exporter configuration.
//
// Values are resolved with the precedence defaults < YAML file <
// environment (CASSANDRA_EXPORTER_*) < command-line flags. Flags are
// applied by the binary after Load returns.
package config

import (
	"time"
)

// DefaultPort is used when the listen address names no port.
const DefaultPort = 7400

// Config is the complete exporter configuration.
type Config struct {
	// Listen is "port", "host:port" or "[ipv6]:port".
	Listen string `yaml:"listen"`

	// MetricsPath is the HTTP path serving the exposition.
	MetricsPath string `yaml:"metrics_path"`

	// GenericTypes adds subsystem types handled by the generic rule, for
	// Cassandra versions newer than the built-in table.
	GenericTypes []string `yaml:"generic_types"`

	Jolokia JolokiaConfig `yaml:"jolokia"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
}

// JolokiaConfig configures the metrics source.
type JolokiaConfig struct {
	URL            string        `yaml:"url"`
	MBean          string        `yaml:"mbean"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
}

// CacheConfig configures the optional Redis response cache. The cache is
// disabled when RedisAddr is empty.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// Enabled reports whether a Redis address is configured.
func (c CacheConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "7400",
		MetricsPath: "/metrics",
		Jolokia: JolokiaConfig{
			URL:            "http://localhost:8778/jolokia",
			MBean:          "org.apache.cassandra.metrics:*",
			Timeout:        5 * time.Second,
			MaxAttempts:    3,
			InitialBackoff: 100 * time.Millisecond,
		},
		Cache: CacheConfig{
			TTL: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
