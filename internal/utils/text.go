package utils

import (
	"math"
	"strings"
	"unicode/utf8"
)

func CountWords(text string) int {
	return len(strings.Fields(text))
}

func EstimateTokensFromWords(wordCount int) int {
	return int(math.Round(float64(wordCount) * 1.3))
}

func EstimateTokens(text string) int {
	return EstimateTokensFromWords(CountWords(text))
}

// TruncateTokens cuts text at a word boundary so that its estimated token
// count stays within maxTokens.
func TruncateTokens(text string, maxTokens int) string {
	if maxTokens <= 0 || EstimateTokens(text) <= maxTokens {
		return text
	}

	maxWords := int(float64(maxTokens) / 1.3)
	words := strings.Fields(text)
	return strings.Join(words[:min(maxWords, len(words))], " ")
}

// Truncate shortens s to at most maxRunes runes, for log previews.
func Truncate(s string, maxRunes int) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}

	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}

	return string([]rune(s)[:maxRunes]) + "..."
}

func CleanCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")

	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}
