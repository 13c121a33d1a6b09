package utils

import "strings"

// TruncateForLog prepares a prompt or model reply for a single log line: runs of
// whitespace, newlines included, collapse to one space and the result is cut to
// limit runes with an ellipsis appended.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
