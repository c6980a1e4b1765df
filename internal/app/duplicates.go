package app

import (
	"regexp"
	"strings"
)

// TitlePattern builds the whitespace-tolerant duplicate-detection regex: the
// title is trimmed, lowercased and stripped of all whitespace, then each
// character is permitted to be followed by arbitrary whitespace in the match.
// "Continuous Integration" therefore matches "continuousintegration" and
// "Continuous   Integration". Punctuation is not stripped, so titles differing
// only in punctuation are missed; this is a heuristic, not a guarantee.
func TitlePattern(title string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(title))), "")
	parts := make([]string, 0, len(normalized))
	for _, r := range normalized {
		parts = append(parts, regexp.QuoteMeta(string(r)))
	}
	return strings.Join(parts, `\s*`)
}
