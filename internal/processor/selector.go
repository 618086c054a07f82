package processor

import (
	"cmp"
	"math"
	"regexp"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var reGoalLike = regexp.MustCompile(`%|\b20[2-5]\d\b`)

// isGoalLike reports whether a sentence carries a numeric target: a
// percentage or a year between 2020 and 2059.
func isGoalLike(s string) bool {
	return reGoalLike.MatchString(s)
}

// SelectMMR greedily picks min(k, n) sentence indices trading normalized
// importance against similarity to what is already picked. The result is in
// ascending index order.
func SelectMMR(scores ScoreMap, sim mat.Symmetric, k int, lambda float64) []int {
	n := len(scores)
	if k <= 0 || n == 0 {
		return []int{}
	}
	k = min(k, n)
	lambda = math.Max(0, math.Min(lambda, 1))

	relevance := normalizeScores(scores)

	// maxSim[i] is the highest similarity between i and any selected index.
	maxSim := make([]float64, n)
	picked := make([]bool, n)
	selected := make([]int, 0, k)

	for len(selected) < k {
		best := -1
		bestScore := math.Inf(-1)

		for i := range n {
			if picked[i] {
				continue
			}
			score := lambda*relevance[i] - (1-lambda)*maxSim[i]
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}

		picked[best] = true
		selected = append(selected, best)

		if sim == nil {
			continue
		}
		for i := range n {
			if !picked[i] {
				maxSim[i] = math.Max(maxSim[i], sim.At(i, best))
			}
		}
	}

	slices.Sort(selected)
	return selected
}

// normalizeScores min-max scales scores into [0, 1]. A zero range maps every
// score to 1.
func normalizeScores(scores ScoreMap) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	lo, hi := floats.Min(scores), floats.Max(scores)
	if hi-lo <= 0 || math.IsNaN(hi-lo) {
		for i := range out {
			out[i] = 1
		}
		return out
	}

	for i, s := range scores {
		out[i] = (s - lo) / (hi - lo)
	}
	return out
}

// ForceGoal swaps the lowest-scoring selected sentence for the
// highest-scoring unselected goal-like one when the selection has none. The
// selection size never changes and the result stays ascending.
func ForceGoal(selected []int, scores ScoreMap, sentences []string) []int {
	if len(selected) == 0 {
		return selected
	}

	chosen := make(map[int]struct{}, len(selected))
	for _, i := range selected {
		if isGoalLike(sentences[i]) {
			return selected
		}
		chosen[i] = struct{}{}
	}

	candidate := -1
	for i, s := range sentences {
		if _, ok := chosen[i]; ok || !isGoalLike(s) {
			continue
		}
		if candidate < 0 || scores.At(i) > scores.At(candidate) {
			candidate = i
		}
	}
	if candidate < 0 {
		return selected
	}

	// lowest score goes; among equal scores the latest index goes
	weakest := slices.MinFunc(selected, func(a, b int) int {
		if c := cmp.Compare(scores.At(a), scores.At(b)); c != 0 {
			return c
		}
		return cmp.Compare(b, a)
	})

	out := make([]int, 0, len(selected))
	for _, i := range selected {
		if i != weakest {
			out = append(out, i)
		}
	}
	out = append(out, candidate)
	slices.Sort(out)

	return out
}
