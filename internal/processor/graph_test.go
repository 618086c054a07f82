package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGraph(t *testing.T) {
	v := NewDenseVectors([][]float64{
		{1, 0, 0},
		{1, 1, 0},
		{0, 0, 1},
		{-1, 0, 0},
	})

	g := BuildGraph(v, 0)
	require.Equal(t, 4, g.Len())

	assert.InDelta(t, 0.7071, g.Similarity(0, 1), 1e-4)
	assert.Equal(t, g.Similarity(0, 1), g.Similarity(1, 0))
	assert.Equal(t, 0.0, g.Similarity(0, 0))
	assert.Equal(t, 0.0, g.Similarity(0, 2))
	assert.Equal(t, 0.0, g.Similarity(0, 3), "negative similarity is clamped")

	// only the 0-1 pair is positive
	assert.Equal(t, 1, g.Edges())
}

func TestBuildGraph_ThresholdIsClamped(t *testing.T) {
	v := NewDenseVectors([][]float64{{1, 0}, {1, 1}})

	g := BuildGraph(v, 0.9)
	assert.Equal(t, 1, g.Edges(), "threshold above the cap must not drop a 0.71 edge")

	g = BuildGraph(v, -1)
	assert.Equal(t, 1, g.Edges())
}

func TestBuildGraph_Empty(t *testing.T) {
	g := BuildGraph(DenseVectors{}, 0)

	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 0, g.Edges())
	assert.Nil(t, g.Matrix)
	assert.Equal(t, 0.0, g.Similarity(0, 1))
}
