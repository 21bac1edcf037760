// Package sanitize bounds arbitrary webhook JSON so it can be embedded in
// Matrix message content.
//
// Matrix canonical JSON forbids non-integer numbers, so every non-integer
// numeric leaf is replaced by its decimal string representation. Traversal
// is bounded: composites nested deeper than MaxDepth are returned untouched,
// and entries beyond MaxBreadth per array or object are passed through
// unsanitized. The bounds cap cost, not correctness: callers embed the
// result as an opaque auxiliary field.
package sanitize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	// MaxDepth is the deepest nesting level the sanitizer descends into.
	MaxDepth = 5

	// MaxBreadth is the highest entry index visited per array or object.
	MaxBreadth = 25
)

// Value returns a sanitized copy of v. The input is never mutated; subtrees
// that were not visited are shared with the input by reference.
//
// Object entries are visited in Go map iteration order, so which entries of
// an over-breadth object are passed through is not deterministic. Array
// pass-through is positional and deterministic.
func Value(v any) any {
	return value(v, 0)
}

func value(v any, depth int) any {
	switch n := v.(type) {
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return v
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	case json.Number:
		if isIntegerNumber(string(n)) {
			return v
		}
		return string(n)
	}

	if depth > MaxDepth {
		return v
	}

	switch c := v.(type) {
	case []any:
		out := make([]any, len(c))
		copy(out, c)
		for i := range out {
			if i > MaxBreadth {
				break
			}
			out[i] = value(out[i], depth+1)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(c))
		i := 0
		for k, e := range c {
			if i > MaxBreadth {
				out[k] = e
				continue
			}
			out[k] = value(e, depth+1)
			i++
		}
		return out
	}

	return v
}

func isIntegerNumber(s string) bool {
	if strings.ContainsAny(s, ".eE") {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}
