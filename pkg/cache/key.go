package cache

import (
	"strings"
)

// KeyPrefix namespaces every key written by the exporter.
const KeyPrefix = "cassandra-exporter"

// CacheKey identifies a cached Jolokia read.
type CacheKey struct {
	// Endpoint is the Jolokia agent URL.
	Endpoint string

	// MBean is the object name or pattern that was read.
	MBean string
}

// String generates a deterministic cache key string.
// Format: cassandra-exporter:<endpoint>:mbean=<pattern>
//
// Example:
//
//	cassandra-exporter:http://cassandra-1:8778/jolokia:mbean=org.apache.cassandra.metrics:*
func (k CacheKey) String() string {
	parts := []string{KeyPrefix}

	if endpoint := strings.TrimRight(k.Endpoint, "/"); endpoint != "" {
		parts = append(parts, endpoint)
	}
	if k.MBean != "" {
		parts = append(parts, "mbean="+k.MBean)
	}

	return strings.Join(parts, ":")
}
