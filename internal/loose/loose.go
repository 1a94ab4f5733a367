// Package loose holds helpers for reading decoded JSON (map[string]any trees)
// whose shape is not trusted.
package loose

// Map returns v as an object, or nil when v is not one.
func Map(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// List returns v as an array, or nil when v is not one.
func List(v any) []any {
	l, _ := v.([]any)
	return l
}

// Maps returns the elements of v as objects; non-object elements become
// empty objects so positions are preserved.
func Maps(v any) []map[string]any {
	list := List(v)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		m := Map(item)
		if m == nil {
			m = map[string]any{}
		}
		out = append(out, m)
	}
	return out
}

// Clone deep-copies a decoded JSON value so callers can modify the result
// without aliasing the input.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// CloneMap deep-copies an object. A nil input yields an empty object.
func CloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}

// FirstOf returns the first non-nil value among keys.
func FirstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// HasAny reports whether m contains at least one of keys.
func HasAny(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}
