// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import (
	"encoding/json"
	"strings"
)

// CleanJSONBlock removes markdown code block wrappers and conversational text around JSON responses.
// LLMs often wrap JSON in ```json ... ``` blocks or add a preamble even when instructed not to.
// Consecutive top-level values (JSON lines) are all kept; only prose before the first
// value and after the last one is dropped. If a value following a complete one is
// cut off, the tail is kept so the caller's parser reports the truncation.
// If no complete JSON value can be located the trimmed text is returned unchanged.
func CleanJSONBlock(text string) string {
	text = stripCodeFence(strings.TrimSpace(text))

	for i := 0; i < len(text); i++ {
		candidate := balancedValue(text[i:])
		if candidate == "" {
			if text[i] == '{' || text[i] == '[' {
				// Unbalanced from here to the end: the output was truncated.
				break
			}
			continue
		}
		if json.Valid([]byte(candidate)) {
			return text[i : i+jsonRunEnd(text[i:])]
		}
		i += len(candidate) - 1
	}

	return text
}

// balancedValue returns the balanced object or array at the start of s, or "".
func balancedValue(s string) string {
	if s == "" {
		return ""
	}
	switch s[0] {
	case '{':
		return extractJSONObject(s)
	case '[':
		return extractJSONArray(s)
	}
	return ""
}

// jsonRunEnd returns the end offset of the run of whitespace-separated JSON values
// at the start of s. A following object or array that is not valid JSON extends the
// run to the end of s.
func jsonRunEnd(s string) int {
	end := len(balancedValue(s))
	for {
		rest := strings.TrimLeft(s[end:], " \t\r\n")
		if rest == "" || (rest[0] != '{' && rest[0] != '[') {
			return end
		}
		next := balancedValue(rest)
		if next == "" || !json.Valid([]byte(next)) {
			return len(strings.TrimRight(s, " \t\r\n"))
		}
		end = len(s) - len(rest) + len(next)
	}
}

func stripCodeFence(text string) string {
	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Handle generic ``` ... ``` blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") && !strings.Contains(firstLine, "[") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

// extractJSONObject returns the balanced {...} value at the start of s, or "".
func extractJSONObject(s string) string {
	return extractBalanced(s, '{', '}')
}

// extractJSONArray returns the balanced [...] value at the start of s, or "".
func extractJSONArray(s string) string {
	return extractBalanced(s, '[', ']')
}

func extractBalanced(s string, open, closing byte) string {
	if len(s) == 0 || s[0] != open {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
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
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
