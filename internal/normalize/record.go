// Package normalize turns loosely shaped backend records into canonical views.
//
// The backend is inconsistent about key spelling (snake_case and camelCase both
// appear), so every logical field is resolved through an ordered fallback chain
// with a literal default. Nothing in this package returns an error for bad data:
// missing or malformed values degrade to placeholders.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is a decoded JSON object as received from the backend
type Record map[string]any

// Field is one row of a fallback table
type Field struct {
	Canonical string
	Chain     []string
	Default   any
}

// Decode parses a JSON object. A JSON value that is not an object yields an
// empty record and no error, since the views tolerate missing fields.
func Decode(data []byte) (Record, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	if m, ok := v.(map[string]any); ok {
		return Record(m), nil
	}
	return Record{}, nil
}

// Truthy reports whether v counts as present: not nil, not false, not zero,
// not NaN and not an empty string. Objects and lists are always present.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0 && !math.IsNaN(f)
	}
	if f, ok := numeric(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// Resolve returns the first truthy value found under the keys of chain, in
// order, or def when none is truthy.
func Resolve(rec Record, chain []string, def any) any {
	for _, key := range chain {
		if v, ok := rec[key]; ok && Truthy(v) {
			return v
		}
	}
	return def
}

// ResolveField applies Resolve using a table row
func ResolveField(rec Record, f Field) any {
	return Resolve(rec, f.Chain, f.Default)
}

// Canonical resolves every field of a table into a map keyed by canonical name
func Canonical(rec Record, fields []Field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.Canonical] = ResolveField(rec, f)
	}
	return out
}

// Number converts a resolved value to float64. Numeric strings are accepted;
// anything else yields def.
func Number(v any, def float64) float64 {
	if f, ok := numeric(v); ok && !math.IsNaN(f) {
		return f
	}
	if s, ok := v.(string); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return def
}

// Text converts a resolved value to its display string, or def when v is nil
func Text(v any, def string) string {
	switch t := v.(type) {
	case nil:
		return def
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	}
	if f, ok := numeric(v); ok {
		return FormatNumber(f)
	}
	return fmt.Sprint(v)
}

// FormatNumber prints a number the way a browser would: no trailing zeros
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

// records extracts the object entries of a JSON list, skipping anything else
func records(v any) []Record {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}
