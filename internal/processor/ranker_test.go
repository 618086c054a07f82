package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func starGraph() *Graph {
	return BuildGraph(NewDenseVectors([][]float64{
		{1, 1, 1},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}), 0)
}

func noBoost(maxIterations int) RankOptions {
	return RankOptions{Damping: 0.85, MaxIterations: maxIterations, Tolerance: 1e-6}
}

func TestRank_Converged(t *testing.T) {
	result := Rank(starGraph(), noBoost(200), nil)

	converged, ok := result.(Converged)
	require.True(t, ok, "expected Converged, got %T", result)
	assert.Greater(t, converged.Iterations, 0)

	scores := result.Scores()
	require.Len(t, scores, 4)
	assert.InDelta(t, 1.0, floats.Sum(scores), 1e-6)
	assert.Greater(t, scores[0], scores[1])
	assert.InDelta(t, scores[1], scores[2], 1e-9)
	assert.InDelta(t, scores[2], scores[3], 1e-9)
}

func TestRank_NonConvergenceFallsBackToDegree(t *testing.T) {
	result := Rank(starGraph(), noBoost(1), nil)

	fallback, ok := result.(Fallback)
	require.True(t, ok, "expected Fallback, got %T", result)
	assert.ErrorIs(t, fallback.Reason, ErrRankingNonConvergence)

	scores := result.Scores()
	assert.InDelta(t, 0.5, scores[0], 1e-9)
	assert.InDelta(t, 1.0/6, scores[1], 1e-9)
}

func TestRank_NoEdges(t *testing.T) {
	g := BuildGraph(NewDenseVectors([][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}), 0)

	result := Rank(g, noBoost(100), nil)

	fallback, ok := result.(Fallback)
	require.True(t, ok, "expected Fallback, got %T", result)
	assert.ErrorIs(t, fallback.Reason, errNoEdges)
	for _, s := range result.Scores() {
		assert.InDelta(t, 1.0/3, s, 1e-12)
	}
}

func TestRank_Empty(t *testing.T) {
	result := Rank(BuildGraph(DenseVectors{}, 0), DefaultRankOptions(), nil)

	assert.IsType(t, Converged{}, result)
	assert.Empty(t, result.Scores())
}

func TestApplyBoosts(t *testing.T) {
	sentences := make([]Sentence, 11)
	for i := range sentences {
		sentences[i] = Sentence{Index: i}
		if i >= 5 {
			sentences[i].SectionIndex = 1
		}
	}

	boosted := applyBoosts(uniformScores(11), sentences, DefaultRankOptions())
	base := 1.0 / 11

	assert.InDelta(t, base*1.3, boosted[0], 1e-9, "lead sentence and section opener")
	assert.InDelta(t, base*1.2, boosted[5], 1e-9, "midpoint section opener")
	assert.InDelta(t, base*1.05, boosted[10], 1e-9, "closing sentence")

	for i, s := range boosted {
		assert.GreaterOrEqual(t, s, base, "index %d", i)
		assert.LessOrEqual(t, s, base*maxBoost, "index %d", i)
	}
}

func TestApplyBoosts_Clamped(t *testing.T) {
	opts := DefaultRankOptions()
	opts.PositionWeight = 5

	boosted := applyBoosts(ScoreMap{1, 1}, nil, opts)

	assert.InDelta(t, maxBoost, boosted[0], 1e-12)
}
