package processor

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaxSimilarityThreshold bounds the edge threshold so that dropping weak
// edges stays a performance knob rather than a ranking change.
const MaxSimilarityThreshold = 0.05

type edge struct {
	to     int
	weight float64
}

// Graph is the sentence similarity graph. Matrix is the full symmetric
// similarity matrix with a zero diagonal; adjacency keeps only the edges
// heavier than the threshold, in ascending neighbour order.
type Graph struct {
	Matrix    *mat.SymDense
	adjacency [][]edge
	edges     int
}

// BuildGraph computes pairwise cosine similarities. Negative similarities
// are clamped to zero.
func BuildGraph(v Vectors, threshold float64) *Graph {
	n := v.Len()
	threshold = math.Max(0, math.Min(threshold, MaxSimilarityThreshold))

	g := &Graph{adjacency: make([][]edge, n)}
	if n == 0 {
		return g
	}
	g.Matrix = mat.NewSymDense(n, nil)

	for i := range n {
		for j := i + 1; j < n; j++ {
			sim := v.Cosine(i, j)
			if math.IsNaN(sim) || sim < 0 {
				sim = 0
			}
			sim = math.Min(sim, 1)
			g.Matrix.SetSym(i, j, sim)

			if sim > threshold {
				g.adjacency[i] = append(g.adjacency[i], edge{to: j, weight: sim})
				g.adjacency[j] = append(g.adjacency[j], edge{to: i, weight: sim})
				g.edges++
			}
		}
	}

	return g
}

func (g *Graph) Len() int {
	return len(g.adjacency)
}

func (g *Graph) Edges() int {
	return g.edges
}

func (g *Graph) Similarity(i, j int) float64 {
	if g.Matrix == nil || i == j {
		return 0
	}
	return g.Matrix.At(i, j)
}
