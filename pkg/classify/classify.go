package classify

import (
	"strings"

	"github.com/Sternrassler/cassandra-exporter/pkg/naming"
)

const namePrefix = "cassandra_"

// Classifier maps raw identifiers to descriptors using a shared Rules table.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	rules   *Rules
	parsers []Parser
}

// New creates a classifier that understands both the dotted and the JMX
// bean spelling of Cassandra identifiers.
func New(rules *Rules) *Classifier {
	if rules == nil {
		panic("rules cannot be nil")
	}
	return &Classifier{
		rules: rules,
		parsers: []Parser{
			DottedParser{Domain: Domain},
			BeanParser{Domain: Domain},
		},
	}
}

// Classify derives the descriptor for a raw identifier.
//
// A nil error with a non-reportable descriptor means the identifier was
// suppressed on purpose. A non-nil error is always an *Error and the
// descriptor is never reportable.
func (c *Classifier) Classify(raw string) (Descriptor, error) {
	path, ok := c.parse(raw)
	if !ok {
		return Descriptor{Identifier: raw}, &Error{Identifier: raw, Err: ErrUnrecognizedCategory}
	}

	category := c.rules.Category(path.Type)

	var (
		d   Descriptor
		err error
	)
	switch category {
	case CategoryGeneric:
		d, err = classifyGeneric(path)
	case CategoryKeyspace, CategoryAlias:
		d = suppressed
	case CategoryTable:
		d, err = classifyTable(path)
	case CategoryIndexTable:
		d, err = classifyIndexTable(path)
	case CategoryThreadPools:
		d, err = classifyThreadPools(path)
	case CategoryCache:
		d, err = classifyCache(path)
	case CategoryClientRequest:
		d, err = classifyClientRequest(path)
	case CategoryDroppedMessage:
		d, err = classifyDroppedMessage(path)
	case CategoryConnection:
		d, err = classifyConnection(path)
	case CategoryHintedHandOff:
		d, err = classifyHintedHandOff(path)
	case CategoryMessaging:
		d, err = classifyMessaging(path)
	default:
		err = ErrUnrecognizedCategory
	}

	if err != nil {
		return Descriptor{Identifier: raw}, &Error{Identifier: raw, Category: category, Err: err}
	}
	d.Identifier = raw

	if d.Reportable && !c.rules.IsLegalName(d.Name) {
		return Descriptor{Identifier: raw}, &Error{Identifier: raw, Category: category, Err: ErrIllegalName}
	}
	return d, nil
}

func (c *Classifier) parse(raw string) (Path, bool) {
	for _, p := range c.parsers {
		if path, ok := p.Parse(raw); ok {
			return path, true
		}
	}
	return Path{}, false
}

// segments splits rest into exactly n non-empty dot-separated segments.
func segments(rest string, n int) ([]string, bool) {
	parts := strings.Split(rest, ".")
	if len(parts) != n {
		return nil, false
	}
	for _, part := range parts {
		if part == "" {
			return nil, false
		}
	}
	return parts, true
}

// Storage.Load -> cassandra_storage_load
func classifyGeneric(p Path) (Descriptor, error) {
	return reportable(namePrefix + naming.Normalize(p.Type) + "_" + naming.Normalize(p.Rest)), nil
}

// Table.BloomFilterDiskSpaceUsed.system_schema.triggers
func classifyTable(p Path) (Descriptor, error) {
	parts, ok := segments(p.Rest, 3)
	if !ok {
		// Table.<kind>.all is the roll-up over all tables.
		if strings.HasSuffix(p.Rest, ".all") {
			return suppressed, nil
		}
		return suppressed, ErrMalformedShape
	}
	return reportable(namePrefix+naming.Normalize(parts[0]),
		"keyspace", parts[1],
		"table", parts[2],
	), nil
}

// IndexTable.<kind>.<keyspace>.<table>.<index>
func classifyIndexTable(p Path) (Descriptor, error) {
	parts, ok := segments(p.Rest, 4)
	if !ok {
		return suppressed, ErrMalformedShape
	}
	return reportable(namePrefix+naming.Normalize(parts[0]),
		"keyspace", parts[1],
		"table", parts[2]+"."+parts[3],
	), nil
}

// ThreadPools.TotalBlockedTasks.transport.Native-Transport-Requests
func classifyThreadPools(p Path) (Descriptor, error) {
	parts, ok := segments(p.Rest, 3)
	if !ok {
		return suppressed, ErrMalformedShape
	}
	return reportable(namePrefix+"thread_pool_"+naming.Normalize(parts[0]),
		"pool_type", parts[1],
		"pool", parts[2],
	), nil
}

// Cache.HitRate.ChunkCache
func classifyCache(p Path) (Descriptor, error) {
	parts, ok := segments(p.Rest, 2)
	if !ok {
		return suppressed, ErrMalformedShape
	}
	// OneMinuteHitRate, FiveMinuteHitRate, FifteenMinuteHitRate
	if strings.HasSuffix(parts[0], "MinuteHitRate") {
		return suppressed, nil
	}
	return reportable(namePrefix+"cache_"+naming.Normalize(parts[0]),
		"cache", parts[1],
	), nil
}

// ClientRequest.Latency.Read-QUORUM
func classifyClientRequest(p Path) (Descriptor, error) {
	parts, ok := segments(p.Rest, 2)
	if !ok {
		return suppressed, ErrMalformedShape
	}
	// Unqualified Read and Write aggregate the per-consistency-level scopes.
	// Only these exact scopes are dropped; CASRead, CASWrite and ViewWrite
	// are exported, unlike exporters that match any scope ending in Read
	// or Write.
	if parts[1] == "Read" || parts[1] == "Write" {
		return suppressed, nil
	}
	return reportable(namePrefix+"client_request_"+naming.Normalize(parts[0]),
		"operation", strings.ToLower(parts[1]),
	), nil
}

// DroppedMessage.CrossNodeDroppedLatency.BATCH_REMOVE
func classifyDroppedMessage(p Path) (Descriptor, error) {
	parts, ok := segments(p.Rest, 2)
	if !ok {
		return suppressed, ErrMalformedShape
	}
	return reportable(namePrefix+"dropped_message_"+naming.Normalize(parts[0]),
		"type", strings.ToLower(parts[1]),
	), nil
}

// Connection.Timeouts.10.7.162.250
func classifyConnection(p Path) (Descriptor, error) {
	kind, address, ok := strings.Cut(p.Rest, ".")
	if !ok || kind == "" || address == "" {
		// Connection.TotalTimeouts is the roll-up over all peers.
		return suppressed, nil
	}
	return reportable(namePrefix+"outbound_"+naming.Normalize(kind),
		"address", address,
	), nil
}

// HintedHandOffManager.Hints_created-10.7.162.250
func classifyHintedHandOff(p Path) (Descriptor, error) {
	kind, address, ok := strings.Cut(p.Rest, "-")
	if !ok || kind == "" || address == "" || strings.Contains(kind, ".") {
		return suppressed, ErrMalformedShape
	}
	return reportable(namePrefix+naming.Normalize(kind),
		"address", address,
	), nil
}

// Messaging.dc1-Latency
func classifyMessaging(p Path) (Descriptor, error) {
	if p.Rest == "CrossNodeLatency" {
		return suppressed, nil
	}
	datacenter, ok := strings.CutSuffix(p.Rest, "-Latency")
	if !ok || datacenter == "" {
		return suppressed, ErrMalformedShape
	}
	return reportable(namePrefix+"cross_node_latency",
		"datacenter", datacenter,
	), nil
}
