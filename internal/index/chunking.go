package index

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinChunkLength is the shortest paragraph, in runes, kept as a chunk.
const MinChunkLength = 10

var blankLineRe = regexp.MustCompile(`\n[ \t]*\n`)

// SplitParagraphs splits doc on blank lines, trims each piece and drops
// pieces shorter than minLen runes. Non-positive minLen uses MinChunkLength.
func SplitParagraphs(doc string, minLen int) []string {
	if minLen <= 0 {
		minLen = MinChunkLength
	}
	clean := strings.ReplaceAll(doc, "\r\n", "\n")
	if strings.TrimSpace(clean) == "" {
		return nil
	}

	parts := blankLineRe.Split(clean, -1)
	chunks := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) < minLen {
			continue
		}
		chunks = append(chunks, p)
	}
	return chunks
}
