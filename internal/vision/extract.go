package vision

import (
	"errors"
	"strings"
)

// Extraction failure modes. Both are treated identically to a timeout by the
// caller: the request falls back to the local analyzer.
var (
	ErrNoJSONObject = errors.New("no JSON object found in response")
	ErrUnbalanced   = errors.New("unbalanced braces in response")
)

// ExtractJSONObject returns the first balanced {...} substring of free-form
// model output. Vision models often wrap their JSON in prose or markdown
// fences; this recovers the object without guessing at the wrapper format.
// Braces inside JSON strings are ignored.
func ExtractJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoJSONObject
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
				return text[start : i+1], nil
			}
		}
	}

	return "", ErrUnbalanced
}
