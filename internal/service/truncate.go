package service

import (
	"fmt"
	"unicode/utf8"
)

// MaxToolOutputRunes caps tool output embedded in prompts or answers.
const MaxToolOutputRunes = 8000

// TruncateToolOutput cuts s to limit runes and appends a marker stating how
// many runes were dropped. Strings within the limit are returned unchanged.
func TruncateToolOutput(s string, limit int) string {
	n := utf8.RuneCountInString(s)
	if n <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + truncationMarker(n-limit)
}

func truncationMarker(dropped int) string {
	return fmt.Sprintf("\n[... obcięto %d znaków]", dropped)
}
