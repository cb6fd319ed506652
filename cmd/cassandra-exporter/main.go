// Cassandra exporter serves the metrics of a Cassandra node in the
// Prometheus text format.
//
// Metrics are read through the node's Jolokia agent on every scrape,
// classified by subsystem and translated into Prometheus families with
// keyspace, table and scope labels.
//
// Usage:
//
//	# Scrape the local agent and listen on :7400
//	cassandra-exporter
//
//	# Use a configuration file
//	cassandra-exporter --config /etc/cassandra-exporter/config.yaml
//
//	# Listen on a specific interface
//	cassandra-exporter --listen 127.0.0.1:9500
//
//	# Check the configuration without starting the server
//	cassandra-exporter --dry-run
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
