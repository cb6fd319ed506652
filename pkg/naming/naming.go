// Package naming converts Cassandra metric identifier segments into
// Prometheus-style lower_snake_case tokens.
package naming

import (
	"strings"
	"unicode"
)

// acronyms rewrites multi-letter acronyms so they produce a single word
// instead of one word per letter (e.g. "SSTable" -> "sstable", not "s_s_table").
var acronyms = strings.NewReplacer(
	"SSTable", "Sstable",
	"CAS", "Cas",
	"CQL", "Cql",
)

// Normalize converts a CamelCase segment into snake_case.
//
// An underscore is inserted before every upper-case letter that is neither
// the first rune nor already preceded by an underscore, and the result is
// lower-cased. Normalize is idempotent on its own output.
func Normalize(segment string) string {
	segment = acronyms.Replace(segment)

	var b strings.Builder
	b.Grow(len(segment) + 8)

	prev := rune(-1)
	for i, r := range segment {
		if i > 0 && unicode.IsUpper(r) && prev != '_' {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
		prev = r
	}
	return b.String()
}
