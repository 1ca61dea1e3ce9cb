package docstore

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The helpers below read loosely typed document values. Each backend hands
// numbers back differently (int64 from Firestore, int32 from Mongo, uint64
// from msgpack, float64 from JSON imports), so callers never type-assert
// directly.

// Int coerces v to an int. Unknown shapes yield 0.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint:
		return int(n)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	case float32:
		return int(math.Round(float64(n)))
	case float64:
		return int(math.Round(n))
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil {
			return int(math.Round(f))
		}
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(math.Round(f))
		}
	}
	return 0
}

// String coerces v to a string. nil yields "".
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

// Bool reports whether v is a true boolean (or the string "true").
func Bool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	}
	return false
}

// List returns v as a slice of values, or nil when v is not a list.
func List(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	case []int:
		out := make([]any, len(l))
		for i, n := range l {
			out[i] = n
		}
		return out
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out
	}
	return nil
}

// Map returns v as a map when it is one.
func Map(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	}
	return nil, false
}

// Ints coerces every element of a list value to an int.
func Ints(v any) []int {
	l := List(v)
	if l == nil {
		return nil
	}
	out := make([]int, len(l))
	for i, e := range l {
		out[i] = Int(e)
	}
	return out
}

// Strings coerces every element of a list value to a string.
func Strings(v any) []string {
	l := List(v)
	if l == nil {
		return nil
	}
	out := make([]string, len(l))
	for i, e := range l {
		out[i] = String(e)
	}
	return out
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return true
	}
	return false
}

// valuesEqual compares two scalar document values, treating all numeric
// encodings of the same integer as equal.
func valuesEqual(a, b any) bool {
	if isNumber(a) && isNumber(b) {
		return Int(a) == Int(b)
	}
	return String(a) == String(b)
}
