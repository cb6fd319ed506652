package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/cassandra-exporter/pkg/config"
	"github.com/Sternrassler/cassandra-exporter/pkg/logging"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "0.1.0"
	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"
)

// shutdownTimeout bounds the graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

type rootFlags struct {
	configFile   string
	listen       string
	metricsPath  string
	jolokiaURL   string
	redisAddr    string
	logLevel     string
	logPretty    bool
	genericTypes []string
	dryRun       bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "cassandra-exporter",
		Short: "Prometheus exporter for Apache Cassandra",
		Long: `Prometheus exporter for Apache Cassandra.

Reads the org.apache.cassandra.metrics MBeans of one node through its Jolokia
agent and serves them in the Prometheus text format. Configuration is taken
from defaults, an optional YAML file, CASSANDRA_EXPORTER_* environment
variables and flags, in increasing order of precedence.

Examples:
  # Scrape the local agent
  cassandra-exporter

  # Use a configuration file
  cassandra-exporter --config /etc/cassandra-exporter/config.yaml

  # Share agent reads between replicas through Redis
  cassandra-exporter --redis-addr redis:6379`,
		Version:       fmt.Sprintf("%s (commit %s, %s)", Version, GitCommit, runtime.Version()),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &flags)
			if err != nil {
				return err
			}
			if flags.dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), "Configuration valid")
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.configFile, "config", "c", "", "config file path")
	f.StringVarP(&flags.listen, "listen", "l", "", "listen address: port, host:port or [ipv6]:port")
	f.StringVar(&flags.metricsPath, "metrics-path", "", "HTTP path serving metrics")
	f.StringVar(&flags.jolokiaURL, "jolokia-url", "", "Jolokia agent URL")
	f.StringVar(&flags.redisAddr, "redis-addr", "", "Redis address of the shared response cache")
	f.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.BoolVar(&flags.logPretty, "log-pretty", false, "human-readable console logs")
	f.StringSliceVar(&flags.genericTypes, "generic-types", nil, "additional metric types exported by the generic rule")
	f.BoolVar(&flags.dryRun, "dry-run", false, "validate the configuration and exit")

	return cmd
}

// loadConfig loads the configuration and applies the flags that were set
// explicitly on the command line.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("listen") {
		cfg.Listen = flags.listen
	}
	if changed("metrics-path") {
		cfg.MetricsPath = flags.metricsPath
	}
	if changed("jolokia-url") {
		cfg.Jolokia.URL = flags.jolokiaURL
	}
	if changed("redis-addr") {
		cfg.Cache.RedisAddr = flags.redisAddr
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("log-pretty") {
		cfg.Log.Pretty = flags.logPretty
	}
	if changed("generic-types") {
		cfg.GenericTypes = flags.genericTypes
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// run serves metrics until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger := logging.Setup(logging.Config{
		Level:  level,
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	})

	addr, err := config.ParseListen(cfg.Listen)
	if err != nil {
		return err
	}

	exp, err := newExporter(ctx, cfg)
	if err != nil {
		return err
	}
	defer exp.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           exp.Routes(cfg.MetricsPath),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", addr).
			Str("metrics_path", cfg.MetricsPath).
			Str("jolokia_url", cfg.Jolokia.URL).
			Bool("cache", exp.cached).
			Str("version", Version).
			Msg("Starting Cassandra exporter")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info().Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info().Msg("Server stopped")
	return nil
}
