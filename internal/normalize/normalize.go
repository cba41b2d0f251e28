// Package normalize applies Unicode NFKC normalization to arbitrarily nested
// JSON values. Every document the pipeline writes passes through here so that
// visually identical strings compare equal during reconciliation.
package normalize

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Value returns a deep copy of v with every string NFKC-normalized. Sequences
// keep their order and length, mapping keys are left untouched, and
// non-string scalars pass through unchanged. The input is never mutated.
func Value(v any) any {
	switch val := v.(type) {
	case string:
		return norm.NFKC.String(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Value(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, item := range val {
			out[key] = Value(item)
		}
		return out
	default:
		return v
	}
}

// Strings normalizes each element of a string slice, returning a new slice.
func Strings(list []string) []string {
	if list == nil {
		return nil
	}
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = norm.NFKC.String(s)
	}
	return out
}

// MarshalJSON serializes v with every nested string NFKC-normalized, using
// the same four-space indentation as the historical snapshot files.
func MarshalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	data, err := json.MarshalIndent(Value(tree), "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal normalized document: %w", err)
	}
	return data, nil
}
