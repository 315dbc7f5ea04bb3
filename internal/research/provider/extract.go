package provider

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// ExtractJSON pulls the first balanced {...} object out of free text and
// parses it. Providers wrap JSON in prose and markdown unpredictably, so
// this is deliberately lenient: code fences are stripped first, then the
// span from the first "{" to its balanced closing brace is parsed; if
// that fails, the span to the last "}" in the text is tried as well.
func ExtractJSON(text string) (map[string]any, error) {
	cleaned := stripFences(text)

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return nil, eris.New("no JSON object found in response text")
	}

	if end := balancedEnd(cleaned, start); end > start {
		var out map[string]any
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &out); err == nil {
			return out, nil
		}
	}

	// Fallback: widest span. Catches objects with braces inside strings
	// that confused the scanner.
	last := strings.LastIndexByte(cleaned, '}')
	if last > start {
		var out map[string]any
		if err := json.Unmarshal([]byte(cleaned[start:last+1]), &out); err == nil {
			return out, nil
		}
	}

	return nil, eris.New("response text contains no parsable JSON object")
}

// balancedEnd scans from the opening brace at start and returns the index
// of its matching close brace, or -1. String literals and escapes are
// honored so braces inside values don't miscount.
func balancedEnd(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
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
				return i
			}
		}
	}
	return -1
}

func stripFences(text string) string {
	out := strings.TrimSpace(text)
	out = strings.ReplaceAll(out, "```json", "")
	out = strings.ReplaceAll(out, "```", "")
	return strings.TrimSpace(out)
}
