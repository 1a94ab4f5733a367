package provider

import "strings"

// FamilyOf derives a model family from a model id, e.g. "llama-3.1-8b-instant"
// becomes "llama-3.1" and "models/gemini-2.0-flash" becomes "gemini-2.0".
func FamilyOf(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	switch {
	case strings.Contains(id, "gpt-4"):
		return "gpt-4"
	case strings.Contains(id, "gpt-3.5"):
		return "gpt-3.5"
	}
	parts := strings.Split(id, "-")
	for i, p := range parts {
		if p != "" && p[0] >= '0' && p[0] <= '9' {
			return strings.Join(parts[:i+1], "-")
		}
	}
	return id
}
