// Package cache stores Jolokia read responses in Redis so that several
// exporter replicas scraping the same Cassandra node share one agent read
// per TTL window.
//
// The cache holds transport payloads only. Metric values are never stored
// in decoded form; every scrape translates the payload afresh.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Any redis.Cmdable works, including cluster and ring clients.
//	manager := cache.NewManager(redisClient, 5*time.Second)
//
//	key := cache.CacheKey{
//		Endpoint: "http://cassandra-1:8778/jolokia",
//		MBean:    "org.apache.cassandra.metrics:*",
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// read from the agent, then
//		_ = manager.Store(ctx, key, body)
//	}
//
// # Metrics
//
//   - cassandra_exporter_cache_hits_total
//   - cassandra_exporter_cache_misses_total
//   - cassandra_exporter_cache_size_bytes
//   - cassandra_exporter_cache_errors_total{operation}
package cache
