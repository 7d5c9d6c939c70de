// Package attrs computes the final attributes of a rendered node, merging
// literal values, dynamic values computed from the current attribute
// state, and a primary color derived from the palette.
package attrs

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Func is a dynamic attribute: it receives the current value of the
// attribute (nil when unset) and the primary color of the node.
// A falsy result is ignored (see Truthy).
type Func func(current any, primary string) any

// Resolve merges declared into a fresh attribute set.
//
// Literal entries are copied. Func entries are evaluated against
// current[key] and kept only when the result is truthy. When primary is
// not empty, "fill" and "stroke" default to it unless the merged result
// sets them.
func Resolve(current map[string]any, declared map[string]any, primary string) map[string]any {
	out := make(map[string]any, len(declared)+2)
	for _, k := range sortedKeys(declared) {
		switch v := declared[k].(type) {
		case Func:
			if r := v(current[k], primary); Truthy(r) {
				out[k] = r
			}
		case func(any, string) any:
			if r := v(current[k], primary); Truthy(r) {
				out[k] = r
			}
		default:
			out[k] = v
		}
	}
	if primary != "" {
		for _, k := range [...]string{"fill", "stroke"} {
			if _, ok := out[k]; !ok {
				out[k] = primary
			}
		}
	}
	return out
}

// sortedKeys makes the evaluation order of dynamic attributes deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Truthy reports whether v is neither nil, false, an empty string,
// a zero number nor NaN.
func Truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint:
		return v != 0
	case uint32:
		return v != 0
	case uint64:
		return v != 0
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	case float64:
		return v != 0 && !math.IsNaN(v)
	default:
		return true
	}
}

// Format returns the string form of an attribute value, as written in
// the SVG output. Floats use the shortest representation.
func Format(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the numeric value of an attribute, parsing strings.
// Units are not supported: "12px" is not a number.
func Float(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
