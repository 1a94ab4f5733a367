// Package numeric holds the amount-to-words conversion and the total
// (never failing) coercion helpers used when reading model output.
package numeric

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CoerceNumber converts v into a float64. Numbers pass through, numeric
// strings are parsed after trimming, and anything else (nil, bools, maps,
// unparseable strings, NaN, Inf) yields def.
func CoerceNumber(v any, def float64) float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return def
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return def
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return def
		}
		f = parsed
	default:
		return def
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// MaxAmount bounds every quantity, price, discount, rate and shipping figure
// read from untrusted input, so derived totals stay finite.
const MaxAmount = 1e12

// CoerceAmount is CoerceNumber clamped to [-MaxAmount, MaxAmount].
func CoerceAmount(v any, def float64) float64 {
	return max(min(CoerceNumber(v, def), MaxAmount), -MaxAmount)
}

// CoerceInt converts v into an int, rounding fractional numbers half away
// from zero. A trailing "%" on strings is ignored so "40%" reads as 40.
func CoerceInt(v any, def int) int {
	if s, ok := v.(string); ok {
		v = strings.TrimSuffix(strings.TrimSpace(s), "%")
	}
	f := CoerceNumber(v, math.NaN())
	if math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return def
	}
	return int(math.Round(f))
}

// CoerceString returns v as a trimmed string. Strings pass through, numbers
// and bools are formatted, nil and composite values yield "".
func CoerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	case map[string]any, []any:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

// CoerceStringList returns the non-empty string elements of v. A scalar is
// treated as a single-element list; nil yields nil.
func CoerceStringList(v any) []string {
	switch list := v.(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, 0, len(list))
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s := CoerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := CoerceString(v); s != "" {
			return []string{s}
		}
		return nil
	}
}
