package format

import (
	"strings"

	"github.com/adalundhe/psyche/core/errors"
)

// ExtractObject strips any text before the first '{' and after the last '}'
// from raw model output. Models routinely wrap JSON in prose or fences; the
// object boundaries are authoritative.
func ExtractObject(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", errors.New(errors.KindProfileParse, "format.extract", "no object boundaries in output")
	}
	return raw[start : end+1], nil
}

// CoerceObject extracts and parses a structured record from raw model
// output, then prunes null leaves and trims string values in place.
func CoerceObject(raw string) (*Map, error) {
	body, err := ExtractObject(raw)
	if err != nil {
		return nil, err
	}

	m, err := ParseMap([]byte(body))
	if err != nil {
		return nil, errors.Wrap(errors.KindProfileParse, "format.parse", err)
	}

	Prune(m)
	return m, nil
}

// Prune removes null-valued leaves and trims string values, recursively.
func Prune(m *Map) {
	var dropped []string
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		switch val := v.(type) {
		case nil:
			dropped = append(dropped, k)
		case string:
			m.Set(k, strings.TrimSpace(val))
		case *Map:
			Prune(val)
		case []any:
			m.Set(k, pruneSlice(val))
		}
	}
	for _, k := range dropped {
		m.Delete(k)
	}
}

func pruneSlice(arr []any) []any {
	out := make([]any, 0, len(arr))
	for _, item := range arr {
		switch val := item.(type) {
		case nil:
			continue
		case string:
			out = append(out, strings.TrimSpace(val))
		case *Map:
			Prune(val)
			out = append(out, val)
		case []any:
			out = append(out, pruneSlice(val))
		default:
			out = append(out, val)
		}
	}
	return out
}
