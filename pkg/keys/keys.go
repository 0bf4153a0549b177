// Package keys canonicalizes order identifiers into join keys.
package keys

import "strings"

// Normalize returns the join key for a raw order identifier: upper-cased,
// trimmed, with every space removed and everything from the first hyphen
// on dropped. "rma 2024-001" and "RMA2024" share the key "RMA2024".
//
// An empty result means the identifier cannot be joined; callers skip it.
func Normalize(raw string) string {
	s := strings.ToUpper(raw)
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	if i := strings.IndexByte(s, '-'); i >= 0 {
		s = s[:i]
	}
	// Cutting at the hyphen can expose whitespace such as a tab that sat
	// before it; trimming again keeps Normalize idempotent.
	return strings.TrimSpace(s)
}
