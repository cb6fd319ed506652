package classify

import (
	"regexp"
	"sort"
)

// Domain is the JMX domain and dotted prefix Cassandra registers its
// metrics under.
const Domain = "org.apache.cassandra.metrics"

// Category is the closed set of identifier categories. Each value has
// exactly one extraction rule in Classifier.Classify.
type Category int

const (
	// CategoryUnknown has no rule.
	CategoryUnknown Category = iota

	// CategoryGeneric covers subsystems without embedded dimensions,
	// e.g. Storage.Load or CommitLog.PendingTasks.
	CategoryGeneric

	// CategoryKeyspace is the per-keyspace roll-up of table metrics.
	CategoryKeyspace

	// CategoryAlias covers deprecated JMX aliases (ColumnFamily,
	// IndexColumnFamily) that duplicate Table and IndexTable.
	CategoryAlias

	// CategoryTable is Table.<kind>.<keyspace>.<table>.
	CategoryTable

	// CategoryIndexTable is IndexTable.<kind>.<keyspace>.<table>.<index>.
	CategoryIndexTable

	// CategoryThreadPools is ThreadPools.<kind>.<pool type>.<pool>.
	CategoryThreadPools

	// CategoryCache is Cache.<kind>.<cache>.
	CategoryCache

	// CategoryClientRequest is ClientRequest.<kind>.<operation>.
	CategoryClientRequest

	// CategoryDroppedMessage is DroppedMessage.<kind>.<verb>.
	CategoryDroppedMessage

	// CategoryConnection is Connection.<kind>.<peer address>.
	CategoryConnection

	// CategoryHintedHandOff is HintedHandOffManager.<kind>-<peer address>.
	CategoryHintedHandOff

	// CategoryMessaging is Messaging.<datacenter>-Latency.
	CategoryMessaging

	categoryCount
)

var categoryNames = [...]string{
	CategoryUnknown:        "unknown",
	CategoryGeneric:        "generic",
	CategoryKeyspace:       "keyspace",
	CategoryAlias:          "alias",
	CategoryTable:          "table",
	CategoryIndexTable:     "index_table",
	CategoryThreadPools:    "thread_pools",
	CategoryCache:          "cache",
	CategoryClientRequest:  "client_request",
	CategoryDroppedMessage: "dropped_message",
	CategoryConnection:     "connection",
	CategoryHintedHandOff:  "hinted_hand_off",
	CategoryMessaging:      "messaging",
}

// String returns the category name.
func (c Category) String() string {
	if c < 0 || c >= categoryCount {
		return "unknown"
	}
	return categoryNames[c]
}

// genericTypes are the subsystems handled by CategoryGeneric.
var genericTypes = []string{
	"BufferPool",
	"Client",
	"CommitLog",
	"Compaction",
	"CQL",
	"HintsService",
	"Index",
	"MemtablePool",
	"ReadRepair",
	"Storage",
	"Streaming",
}

// Rules is the immutable rule table shared by classifiers. Build it once
// with NewRules; it is safe for concurrent use.
type Rules struct {
	categories map[string]Category
	legalName  *regexp.Regexp
}

// Option customizes the rule table built by NewRules.
type Option func(*Rules)

// WithGenericTypes registers additional subsystem types handled by the
// generic rule. Types that already have a dedicated rule are left alone.
func WithGenericTypes(types ...string) Option {
	return func(r *Rules) {
		for _, typ := range types {
			if _, exists := r.categories[typ]; exists || typ == "" {
				continue
			}
			r.categories[typ] = CategoryGeneric
		}
	}
}

// NewRules builds the rule table.
func NewRules(opts ...Option) *Rules {
	r := &Rules{
		categories: map[string]Category{
			"keyspace":             CategoryKeyspace,
			"ColumnFamily":         CategoryAlias,
			"IndexColumnFamily":    CategoryAlias,
			"Table":                CategoryTable,
			"IndexTable":           CategoryIndexTable,
			"ThreadPools":          CategoryThreadPools,
			"Cache":                CategoryCache,
			"ClientRequest":        CategoryClientRequest,
			"DroppedMessage":       CategoryDroppedMessage,
			"Connection":           CategoryConnection,
			"HintedHandOffManager": CategoryHintedHandOff,
			"Messaging":            CategoryMessaging,
		},
		legalName: regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`),
	}
	for _, typ := range genericTypes {
		r.categories[typ] = CategoryGeneric
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Category returns the category for a type segment.
func (r *Rules) Category(typ string) Category {
	return r.categories[typ]
}

// IsLegalName reports whether name is a valid Prometheus metric name.
func (r *Rules) IsLegalName(name string) bool {
	return r.legalName.MatchString(name)
}

// Types returns every type segment with a rule, sorted.
func (r *Rules) Types() []string {
	types := make([]string, 0, len(r.categories))
	for typ := range r.categories {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}
