// Package format provides order-preserving JSON records and the coercion
// applied to raw model output before it is treated as structured data.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Map is a JSON object that preserves key insertion order. Profiles, forms,
// and constructs are all ordered: the position of a field is meaningful and
// must survive serialization round-trips.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap creates an empty ordered map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// Get returns the value for key and whether it was present.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set stores a value, appending the key if it is new.
func (m *Map) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes a key, preserving the order of the remaining keys.
func (m *Map) Delete(key string) {
	if _, exists := m.values[key]; !exists {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *Map) Len() int {
	return len(m.keys)
}

// Range calls fn for each key-value pair in insertion order. Returning
// false stops the iteration.
func (m *Map) Range(fn func(key string, value any) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// MarshalJSON renders the object with keys in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object preserving key order. Nested objects
// decode as *Map, arrays as []any, numbers as json.Number.
func (m *Map) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	parsed, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}

func decodeObject(dec *json.Decoder) (*Map, error) {
	m := NewMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("decode value for %q: %w", key, err)
		}
		m.Set(key, value)
	}
	// consume closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	var arr []any
	for dec.More() {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); ok {
		switch delim {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", delim)
		}
	}
	return tok, nil
}

// ParseMap decodes bytes into an ordered map.
func ParseMap(data []byte) (*Map, error) {
	m := NewMap()
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return m, nil
}

// Clone performs a deep copy of the map. Nested *Map values and slices are
// copied; scalar values are shared.
func (m *Map) Clone() *Map {
	out := NewMap()
	for _, k := range m.keys {
		out.Set(k, cloneValue(m.values[k]))
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case *Map:
		return val.Clone()
	case []any:
		arr := make([]any, len(val))
		for i, item := range val {
			arr[i] = cloneValue(item)
		}
		return arr
	default:
		return v
	}
}
