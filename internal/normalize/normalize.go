// Package normalize turns the structured output of privileged queries into a
// uniform sequence of records.
//
// ConvertTo-Json collapses a one-element collection into a bare object and
// prints nothing (or "null") for an empty one, so the same query can yield
// "", "null", "{...}" or "[{...},...]". Every consumer goes through this
// package so that no shape is silently dropped or duplicated.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/bcnelson/sentinelguard/internal/domain"
)

// Record is one loosely-typed object from the payload.
type Record map[string]json.RawMessage

// String returns the field as a string. Numbers and booleans are rendered
// in their JSON form; null, objects, arrays and missing keys report false.
func (r Record) String(key string) (string, bool) {
	raw, ok := r[key]
	if !ok {
		return "", false
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case 't', 'f':
		b, err := strconv.ParseBool(string(raw))
		if err != nil {
			return "", false
		}
		return strconv.FormatBool(b), true
	case 'n', '{', '[':
		return "", false
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", false
		}
		return n.String(), true
	}
}

// StringOr returns the field as a non-empty string, or def.
func (r Record) StringOr(key, def string) string {
	if s, ok := r.String(key); ok && s != "" {
		return s
	}
	return def
}

// Text returns the field only if it is a JSON string.
func (r Record) Text(key string) (string, bool) {
	raw := bytes.TrimSpace(r[key])
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Float returns a numeric field, accepting numbers and numeric strings.
func (r Record) Float(key string) (float64, bool) {
	s, ok := r.String(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int returns an integral field, truncating fractional values.
func (r Record) Int(key string) (int, bool) {
	f, ok := r.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Bool returns a boolean field, accepting true/false and "True"/"False".
func (r Record) Bool(key string) bool {
	s, ok := r.String(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

// Strings returns a list field. A bare string counts as a one-element list,
// since nested arrays collapse the same way as the top-level payload.
// Non-string elements are skipped.
func (r Record) Strings(key string) []string {
	raw := bytes.TrimSpace(r[key])
	if len(raw) == 0 {
		return nil
	}

	switch raw[0] {
	case '"':
		if s, ok := r.Text(key); ok {
			return []string{s}
		}
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		var out []string
		for _, item := range items {
			var s string
			if err := json.Unmarshal(item, &s); err == nil {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// shape classifies a payload by its first significant byte.
type shape int

const (
	shapeEmpty shape = iota
	shapeArray
	shapeObject
)

func classify(raw string) (shape, []byte) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 || string(data) == "null" {
		return shapeEmpty, nil
	}
	if data[0] == '[' {
		return shapeArray, data
	}
	return shapeObject, data
}

// Records normalizes raw into loosely-typed records.
// JSON null elements inside an array are skipped.
func Records(raw string) ([]Record, error) {
	all, err := Decode[Record](raw)
	if err != nil {
		return nil, err
	}

	out := all[:0]
	for _, rec := range all {
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Decode normalizes raw into a slice of T, preserving payload order.
func Decode[T any](raw string) ([]T, error) {
	kind, data := classify(raw)

	switch kind {
	case shapeEmpty:
		return []T{}, nil
	case shapeArray:
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: JSON parse error: %v", domain.ErrParse, err)
		}
		if items == nil {
			items = []T{}
		}
		return items, nil
	default:
		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("%w: JSON parse error: %v", domain.ErrParse, err)
		}
		return []T{item}, nil
	}
}

// One decodes a payload that must hold exactly one object, e.g. a
// hashtable emitted by a status query. An empty payload is a parse error.
func One[T any](raw string) (T, error) {
	var zero T

	items, err := Decode[T](raw)
	if err != nil {
		return zero, err
	}
	if len(items) != 1 {
		return zero, fmt.Errorf("%w: expected one object, got %d", domain.ErrParse, len(items))
	}
	return items[0], nil
}
