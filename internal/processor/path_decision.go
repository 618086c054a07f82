package processor

import (
	"math"
	"unicode/utf8"
)

// PassthroughMaxSentences is the largest document returned verbatim
// without ranking.
const PassthroughMaxSentences = 3

type LengthPolicy struct {
	CharBudget   int
	MinSentences int
	MaxSentences int
	Lambda       float64
}

var lengthPolicies = map[Length]LengthPolicy{
	LengthShort:  {CharBudget: 1500, MinSentences: 3, MaxSentences: 15, Lambda: 0.75},
	LengthMedium: {CharBudget: 5000, MinSentences: 5, MaxSentences: 30, Lambda: 0.7},
	LengthLong:   {CharBudget: 10000, MinSentences: 8, MaxSentences: 60, Lambda: 0.6},
}

func PolicyFor(l Length) LengthPolicy {
	if p, ok := lengthPolicies[l]; ok {
		return p
	}
	return lengthPolicies[LengthMedium]
}

func ShouldPassthrough(sentenceCount int) bool {
	return sentenceCount <= PassthroughMaxSentences
}

// TargetCount derives how many sentences to select. A ratio in (0, 1]
// overrides the length policy.
func TargetCount(sentences []Sentence, length Length, ratio float64) int {
	n := len(sentences)
	if n == 0 {
		return 0
	}

	if ratio > 0 && ratio <= 1 {
		return min(n, max(1, int(math.Ceil(float64(n)*ratio))))
	}

	policy := PolicyFor(length)
	k := policy.CharBudget / max(1, meanSentenceLength(sentences))
	k = max(policy.MinSentences, min(k, policy.MaxSentences))

	return min(k, n)
}

func meanSentenceLength(sentences []Sentence) int {
	total := 0
	for _, s := range sentences {
		total += utf8.RuneCountInString(s.Text)
	}
	return int(math.Round(float64(total) / float64(len(sentences))))
}
