package blobstore

import (
	"regexp"
	"strings"
)

// forbiddenKeyChars are the characters the underlying document store
// rejects in key segments.
const forbiddenKeyChars = "$#[]/."

var versionPattern = regexp.MustCompile(`version(\d+)\.(\d+)`)

// RewriteVersion rewrites version substrings of shape version<x>.<y> to
// version<x>_<y>. Applied at both write and read time so callers may pass
// either form.
func RewriteVersion(key string) string {
	return versionPattern.ReplaceAllString(key, "version${1}_${2}")
}

// Sanitize replaces every forbidden character in a key segment with '_'.
// An empty segment becomes "_". The replacement is total, so the function
// is idempotent.
func Sanitize(segment string) string {
	segment = RewriteVersion(segment)
	var b strings.Builder
	b.Grow(len(segment))
	for _, r := range segment {
		if strings.ContainsRune(forbiddenKeyChars, r) {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" {
		return "_"
	}
	return out
}
