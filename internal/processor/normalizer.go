package processor

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	rePageArtifact = regexp.MustCompile(`(?i)\bpage\s+\d+\s+of\s+\d+\b`)
	reWhitespace   = regexp.MustCompile(`[\s\p{Z}]+`)
)

var spaceReplacer = strings.NewReplacer("\r", " ", "\u00a0", " ")

// Normalize cleans up raw extracted text into a single line of
// space-separated words.
func Normalize(raw string) string {
	text := norm.NFKC.String(raw)
	text = spaceReplacer.Replace(text)
	text = reWhitespace.ReplaceAllString(text, " ")
	text = removePageArtifacts(text)
	text = reWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// removePageArtifacts runs to a fixpoint: removing one match can join the
// halves of another.
func removePageArtifacts(text string) string {
	for {
		next := rePageArtifact.ReplaceAllString(text, " ")
		if next == text {
			return text
		}
		text = next
	}
}
