// Package kv provides an insertion-ordered map for emitted parameter
// groups, plus number types that keep their float form in JSON.
package kv

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Map is a string-keyed map that marshals keys in insertion order.
// Setting an existing key replaces its value in place.
type Map struct {
	keys   []string
	values map[string]any
}

// New returns an empty Map.
func New() *Map {
	return &Map{values: make(map[string]any)}
}

// Set stores v under key and returns m for chaining.
func (m *Map) Set(key string, v any) *Map {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
	return m
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	return append([]string(nil), m.keys...)
}

func (m *Map) Len() int { return len(m.keys) }

// MarshalJSON writes the entries in insertion order without HTML escaping.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encode(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encode(&buf, m.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates each value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Float is a float64 that always marshals with a fractional part, so 110
// is written as 110.0 and consumers read it back as a float.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	s := strconv.FormatFloat(float64(f), 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return []byte(s), nil
}

// Round rounds v half away from zero to places decimal digits.
func Round(v float64, places int32) Float {
	return Float(decimal.NewFromFloat(v).Round(places).InexactFloat64())
}

// Group is one named parameter group handed to a formatter.
type Group struct {
	Section string
	Key     string
	Value   any
}
