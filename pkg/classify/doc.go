// Package classify translates raw Cassandra metric identifiers into
// Prometheus metric descriptors.
//
// Cassandra registers every metric under a hierarchical identifier. Two
// spellings of the same identifier are understood:
//
//	org.apache.cassandra.metrics.Table.ReadLatency.system_schema.triggers
//	org.apache.cassandra.metrics:type=Table,keyspace=system_schema,scope=triggers,name=ReadLatency
//
// The first segment after the domain (or the "type" property) is the
// category. Each category has its own extraction rule that derives a flat
// metric name and pulls the embedded dimensions (keyspace, table, cache,
// thread pool, peer address, ...) out as labels:
//
//	cassandra_read_latency{keyspace="system_schema",table="triggers"}
//
// # Suppression
//
// Some identifiers are never reported. Pre-aggregated roll-ups (keyspace
// totals, "all" tables, cross-node latency totals, unqualified Read/Write
// client requests, XMinuteHitRate cache rates) duplicate data that is
// already exported with labels, so they are dropped silently. Identifiers
// that do not fit their category's shape, or whose category is unknown, are
// dropped too, but Classify reports them through an *Error so the caller
// can log them. Nothing in this package logs or panics.
//
// # Rules
//
// The category table and the legal-name pattern live in a Rules value built
// once with NewRules and shared read-only by every Classifier:
//
//	rules := classify.NewRules()
//	c := classify.New(rules)
//
//	d, err := c.Classify("org.apache.cassandra.metrics.Cache.HitRate.ChunkCache")
//	if err != nil {
//		// unhandled identifier, log and skip
//	}
//	if d.Reportable {
//		// d.Name == "cassandra_cache_hit_rate"
//		// d.LabelNames == []string{"cache"}, d.LabelValues == []string{"ChunkCache"}
//	}
package classify
