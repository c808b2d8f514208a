// Package sanitize enforces the payload-boundary invariant (§4.7, P7):
// every value crossing into a JSON-serializable report is a JSON-safe
// primitive. NaN/Inf floats become null, time.Time becomes an RFC3339
// string, and nested maps/slices are walked recursively.
package sanitize

import (
	"math"
	"time"
)

// Value walks v and returns a JSON-safe equivalent: float64 NaN/Inf become
// nil, time.Time becomes its RFC3339 string, and map[string]any/[]any are
// walked recursively. Other types pass through unchanged.
func Value(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	case float32:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case map[string]any:
		return Map(t)
	case []any:
		return Slice(t)
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = Map(m)
		}
		return out
	default:
		return v
	}
}

// Map returns a sanitized copy of m, recursively.
func Map(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Value(v)
	}
	return out
}

// Slice returns a sanitized copy of s, recursively.
func Slice(s []any) []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = Value(v)
	}
	return out
}

// Float returns f, or nil if f is NaN/Inf — the scalar form of Value used
// directly by analyzers that compute a single numeric field.
func Float(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
