// Package logging configures the exporter's structured zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Service is attached to every log line.
const Service = "cassandra-exporter"

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// zerologLevels maps every supported level to its zerolog counterpart.
var zerologLevels = map[LogLevel]zerolog.Level{
	LevelDebug: zerolog.DebugLevel,
	LevelInfo:  zerolog.InfoLevel,
	LevelWarn:  zerolog.WarnLevel,
	LevelError: zerolog.ErrorLevel,
}

// ParseLevel validates a level name. Matching ignores case and surrounding
// space, and "warning" is accepted for "warn".
func ParseLevel(s string) (LogLevel, error) {
	l := LogLevel(strings.ToLower(strings.TrimSpace(s)))
	if l == "warning" {
		l = LevelWarn
	}
	if _, ok := zerologLevels[l]; !ok {
		return "", fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
	}
	return l, nil
}

// zerologLevel returns the zerolog level. Unknown levels map to info.
func (l LogLevel) zerologLevel() zerolog.Level {
	parsed, err := ParseLevel(string(l))
	if err != nil {
		return zerolog.InfoLevel
	}
	return zerologLevels[parsed]
}

// Setup installs the global logger that NewLogger derives from and returns
// it. Every line carries the service name.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(cfg.Level.zerologLevel())

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(out).With().
		Timestamp().
		Str("service", Service).
		Logger()
	return log.Logger
}

// NewLogger returns a child of the global logger tagged with component.
// Call it after Setup; loggers keep the output they were created with.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Repeated failures of an identifier already reported once
//   - Cache hits and stores, agent round trips
//   - Skipped MBeans with unknown attribute sets
//   - Per-pass summaries (identifiers, families, duration)
//
// Info: Normal operation events
//   - Server startup/shutdown
//   - Effective configuration
//   - Reads that succeeded after a retry
//
// Warn: Warning conditions that don't prevent operation
//   - First failure of an identifier (unrecognized category, malformed
//     shape, illegal name, unsupported gauge value, type conflict, panic)
//   - Cache errors (fallback to the agent)
//   - Exhausted retries
//
// Error: Error conditions requiring attention
//   - Source snapshot failures (source_up drops to 0)
//   - Encoding failures of a scrape response
//   - Configuration errors
//
// Context Fields:
//   - component: collector, jolokia, server
//   - identifier: raw Cassandra metric identifier
//   - reason: suppression reason label
//   - endpoint: Jolokia agent URL
//   - mbean: JMX object name
//   - error_class: client, server, rate_limit, network, decode
