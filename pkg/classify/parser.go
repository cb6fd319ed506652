package classify

import "strings"

// Path is a raw identifier split into its category segment and the
// category-specific remainder, in dotted form.
type Path struct {
	Type string
	Rest string
}

// Parser recognizes one spelling of raw identifiers.
type Parser interface {
	// Parse returns the identifier's path, or false if the identifier is
	// not in this parser's format.
	Parse(raw string) (Path, bool)
}

// DottedParser parses identifiers of the form
// org.apache.cassandra.metrics.<Type>.<rest>.
type DottedParser struct {
	Domain string
}

// Parse implements Parser.
func (p DottedParser) Parse(raw string) (Path, bool) {
	tail, ok := strings.CutPrefix(raw, p.Domain+".")
	if !ok {
		return Path{}, false
	}
	typ, rest, ok := strings.Cut(tail, ".")
	if !ok || typ == "" || rest == "" {
		return Path{}, false
	}
	return Path{Type: typ, Rest: rest}, true
}

// beanTypeAliases maps JMX "type" values to the type segment Cassandra
// uses in the dotted spelling of the same metric.
const (
	tableType      = "Table"
	allTablesScope = "all"
)

var beanTypeAliases = map[string]string{
	"Keyspace": "keyspace",
}

// beanRestKeys lists the JMX properties that make up the dotted remainder,
// in the order Cassandra joins them.
var beanRestKeys = []string{"name", "keyspace", "path", "scope"}

// BeanParser parses JMX object names of the form
// org.apache.cassandra.metrics:type=<Type>,keyspace=..,scope=..,name=..
// and rewrites them into the dotted remainder Cassandra registers the same
// metric under, so both spellings classify identically.
type BeanParser struct {
	Domain string
}

// Parse implements Parser.
func (p BeanParser) Parse(raw string) (Path, bool) {
	tail, ok := strings.CutPrefix(raw, p.Domain+":")
	if !ok {
		return Path{}, false
	}

	props := make(map[string]string, 4)
	for _, kv := range strings.Split(tail, ",") {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return Path{}, false
		}
		props[key] = value
	}

	typ := props["type"]
	if typ == "" || props["name"] == "" {
		return Path{}, false
	}
	if alias, ok := beanTypeAliases[typ]; ok {
		typ = alias
	}

	parts := make([]string, 0, len(beanRestKeys))
	for _, key := range beanRestKeys {
		if v := props[key]; v != "" {
			parts = append(parts, v)
		}
	}
	// The all-tables roll-up is registered as type=Table,name=<kind> on JMX
	// and as Table.<kind>.all in the dotted form.
	if typ == tableType && props["keyspace"] == "" && props["scope"] == "" {
		parts = append(parts, allTablesScope)
	}
	return Path{Type: typ, Rest: strings.Join(parts, ".")}, true
}
