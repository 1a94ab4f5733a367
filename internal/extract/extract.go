// Package extract recovers a JSON object from free-form model output.
package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when no strategy yields a JSON object.
var ErrNoJSON = errors.New("no JSON object found in text")

const previewLen = 120

// Error describes a failed extraction. It unwraps to ErrNoJSON.
type Error struct {
	Preview string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (text starts %q)", ErrNoJSON.Error(), e.Preview)
}

func (e *Error) Unwrap() error { return ErrNoJSON }

var fenced = regexp.MustCompile("(?s)```(?:json|JSON)?[ \t]*\\r?\\n?(.*?)```")

// JSON returns the first JSON object found in text, trying in order: the
// whole text, the first fenced code block, the first balanced {...} span
// outside string literals, and finally the span from the first '{' to the
// last '}'.
func JSON(text string) (map[string]any, error) {
	if obj, ok := decode(text); ok {
		return obj, nil
	}
	if m := fenced.FindStringSubmatch(text); m != nil {
		if obj, ok := decode(m[1]); ok {
			return obj, nil
		}
	}
	if span, ok := balanced(text); ok {
		if obj, ok := decode(span); ok {
			return obj, nil
		}
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		if obj, ok := decode(text[start : end+1]); ok {
			return obj, nil
		}
	}
	return nil, &Error{Preview: preview(text)}
}

func decode(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	// trailing garbage means the span was not a single object
	if dec.More() {
		return nil, false
	}
	return obj, true
}

// balanced returns the first top-level {...} span, matching braces while
// skipping over string literals and their escapes.
func balanced(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func preview(text string) string {
	text = strings.TrimSpace(text)
	r := []rune(text)
	if len(r) > previewLen {
		return string(r[:previewLen]) + "..."
	}
	return text
}
