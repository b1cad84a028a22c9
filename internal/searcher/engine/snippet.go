package engine

import (
	"strings"
)

const ellipsis = "..."

// Snippet returns the first line of code containing query, ignoring case,
// trimmed and cut to maxLen runes. It is empty when no single line contains
// the query.
func Snippet(code, query string, maxLen int) string {
	needle := strings.ToLower(query)
	for _, line := range strings.Split(code, "\n") {
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		return truncate(strings.TrimSpace(line), maxLen)
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + ellipsis
}
