package format

import "strings"

// Canon normalizes a field name for comparison across the rubric, the
// construct schema, and sanitized store keys: case-folded, '/' and '_'
// both mapped to space, whitespace collapsed.
func Canon(name string) string {
	lowered := strings.ToLower(name)
	lowered = strings.ReplaceAll(lowered, "/", " ")
	lowered = strings.ReplaceAll(lowered, "_", " ")
	return strings.Join(strings.Fields(lowered), " ")
}

// KeyEqual reports whether two field names agree under Canon.
func KeyEqual(a, b string) bool {
	return Canon(a) == Canon(b)
}

// LookupCanon finds the value for a key that agrees with name under
// Canon, returning the stored key form as well.
func LookupCanon(m *Map, name string) (string, any, bool) {
	want := Canon(name)
	var (
		foundKey string
		foundVal any
		found    bool
	)
	m.Range(func(key string, value any) bool {
		if Canon(key) == want {
			foundKey, foundVal, found = key, value, true
			return false
		}
		return true
	})
	return foundKey, foundVal, found
}
