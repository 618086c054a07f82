package processor

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const maxBoost = 1.5

var errNoEdges = errors.New("similarity graph has no edges")

type RankOptions struct {
	Damping       float64
	MaxIterations int
	Tolerance     float64

	// Multiplicative boosts. The combined factor is clamped to [1, 1.5].
	PositionWeight float64
	EndWeight      float64
	SectionWeight  float64
}

func DefaultRankOptions() RankOptions {
	return RankOptions{
		Damping:        0.85,
		MaxIterations:  100,
		Tolerance:      1e-6,
		PositionWeight: 0.2,
		EndWeight:      0.05,
		SectionWeight:  0.1,
	}
}

// RankResult is either Converged or Fallback.
type RankResult interface {
	Scores() ScoreMap
	rankResult()
}

type Converged struct {
	scores     ScoreMap
	Iterations int
}

// Fallback carries deterministic scores used when PageRank could not
// produce a trustworthy ranking.
type Fallback struct {
	scores ScoreMap
	Reason error
}

func (c Converged) Scores() ScoreMap { return c.scores }
func (f Fallback) Scores() ScoreMap  { return f.scores }
func (Converged) rankResult()        {}
func (Fallback) rankResult()         {}

// Rank scores every node of g with weighted PageRank and applies the
// positional boosts. sentences may be nil, which disables the section boost.
func Rank(g *Graph, opts RankOptions, sentences []Sentence) RankResult {
	n := g.Len()
	if n == 0 {
		return Converged{scores: ScoreMap{}}
	}

	var result RankResult
	if g.Edges() == 0 {
		result = Fallback{scores: uniformScores(n), Reason: errNoEdges}
	} else {
		result = weightedPageRank(g, opts)
	}

	boosted := applyBoosts(result.Scores(), sentences, opts)
	switch r := result.(type) {
	case Converged:
		return Converged{scores: boosted, Iterations: r.Iterations}
	case Fallback:
		return Fallback{scores: boosted, Reason: r.Reason}
	}
	return result
}

func weightedPageRank(g *Graph, opts RankOptions) RankResult {
	n := g.Len()
	damping := opts.Damping
	if damping <= 0 || damping >= 1 {
		damping = 0.85
	}

	outgoingSums := make([]float64, n)
	for i, edges := range g.adjacency {
		for _, e := range edges {
			outgoingSums[i] += e.weight
		}
	}

	scores := uniformScores(n)
	next := make([]float64, n)

	for iteration := 1; iteration <= opts.MaxIterations; iteration++ {
		// mass sitting on nodes without edges is spread evenly
		dangling := 0.0
		for i := range n {
			if outgoingSums[i] == 0 {
				dangling += scores[i]
			}
		}
		base := (1-damping)/float64(n) + damping*dangling/float64(n)

		for i := range n {
			linkComponent := 0.0
			for _, e := range g.adjacency[i] {
				linkComponent += scores[e.to] * (e.weight / outgoingSums[e.to])
			}
			next[i] = base + damping*linkComponent
		}

		change := floats.Distance(next, scores, 1)
		scores, next = next, scores

		if change < float64(n)*opts.Tolerance {
			return Converged{scores: ScoreMap(scores), Iterations: iteration}
		}
	}

	return Fallback{
		scores: degreeCentrality(outgoingSums),
		Reason: fmt.Errorf("after %d iterations: %w", opts.MaxIterations, ErrRankingNonConvergence),
	}
}

func degreeCentrality(weightedDegree []float64) ScoreMap {
	total := floats.Sum(weightedDegree)
	if total == 0 {
		return uniformScores(len(weightedDegree))
	}

	scores := make(ScoreMap, len(weightedDegree))
	for i, d := range weightedDegree {
		scores[i] = d / total
	}
	return scores
}

func uniformScores(n int) ScoreMap {
	scores := make(ScoreMap, n)
	for i := range scores {
		scores[i] = 1 / float64(n)
	}
	return scores
}

func applyBoosts(scores ScoreMap, sentences []Sentence, opts RankOptions) ScoreMap {
	n := len(scores)
	boosted := make(ScoreMap, n)

	for i, score := range scores {
		position := 0.0
		if n > 1 {
			position = float64(i) / float64(n-1)
		}

		lead := math.Cos(position * math.Pi / 2)
		factor := 1 + opts.PositionWeight*lead*lead
		if position >= 0.9 {
			factor += opts.EndWeight
		}
		if opensSection(sentences, i) {
			factor += opts.SectionWeight
		}

		boosted[i] = score * math.Max(1, math.Min(factor, maxBoost))
	}

	return boosted
}

func opensSection(sentences []Sentence, i int) bool {
	if i >= len(sentences) {
		return false
	}
	return i == 0 || sentences[i].SectionIndex != sentences[i-1].SectionIndex
}
