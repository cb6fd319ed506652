package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/cassandra-exporter/pkg/cache"
	"github.com/Sternrassler/cassandra-exporter/pkg/classify"
	"github.com/Sternrassler/cassandra-exporter/pkg/collector"
	"github.com/Sternrassler/cassandra-exporter/pkg/config"
	"github.com/Sternrassler/cassandra-exporter/pkg/jolokia"
	"github.com/Sternrassler/cassandra-exporter/pkg/logging"
)

// exporter wires the Jolokia source, the optional cache and the collector.
type exporter struct {
	collector *collector.Collector
	redis     *redis.Client
	cached    bool
}

// newExporter builds the exporter for cfg. An unreachable Redis disables the
// cache instead of failing startup.
func newExporter(ctx context.Context, cfg *config.Config) (*exporter, error) {
	logger := logging.NewLogger("exporter")
	exp := &exporter{}

	jcfg := jolokia.DefaultConfig(cfg.Jolokia.URL)
	if cfg.Jolokia.MBean != "" {
		jcfg.MBean = cfg.Jolokia.MBean
	}
	jcfg.Username = cfg.Jolokia.Username
	jcfg.Password = cfg.Jolokia.Password
	jcfg.Timeout = cfg.Jolokia.Timeout
	jcfg.Retry.MaxAttempts = cfg.Jolokia.MaxAttempts
	if cfg.Jolokia.InitialBackoff > 0 {
		jcfg.Retry.InitialBackoff = cfg.Jolokia.InitialBackoff
	}

	if cfg.Cache.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("Redis unavailable, running without response cache")
			_ = client.Close()
		} else {
			logger.Info().Str("addr", cfg.Cache.RedisAddr).Dur("ttl", cfg.Cache.TTL).Msg("Connected to Redis")
			exp.redis = client
			exp.cached = true
			jcfg.Cache = cache.NewManager(client, cfg.Cache.TTL)
		}
	}

	source, err := jolokia.New(jcfg)
	if err != nil {
		exp.Close()
		return nil, fmt.Errorf("failed to create jolokia client: %w", err)
	}

	rules := classify.NewRules(classify.WithGenericTypes(cfg.GenericTypes...))
	logger.Debug().Strs("types", rules.Types()).Msg("Classification rules loaded")
	exp.collector = collector.New(source, classify.New(rules), logging.NewLogger("collector"))
	return exp, nil
}

// Routes returns the handler serving metrics at metricsPath and the health
// endpoint.
func (e *exporter) Routes(metricsPath string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, e.collector.Handler())
	mux.HandleFunc(config.HealthPath, healthHandler)
	return mux
}

// Close releases the Redis connection, if any.
func (e *exporter) Close() {
	if e.redis != nil {
		_ = e.redis.Close()
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}
