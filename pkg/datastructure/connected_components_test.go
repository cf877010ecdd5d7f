package datastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLargestWeaklyConnectedComponent(t *testing.T) {
	// 0 -> 1 <- 2 (weakly connected through 1), 3 <-> 4, 5 alone
	vertices := make([]Vertex, 6)
	for i := range vertices {
		vertices[i] = NewVertex(float64(i), float64(i), Index(i), int64(10+i))
	}
	edges := []Edge{
		NewEdge(0, 1, 1),
		NewEdge(2, 1, 2),
		NewEdge(3, 4, 3),
		NewEdge(4, 3, 3),
	}
	g := NewGraph(vertices, edges)

	comp, numComponents := g.WeaklyConnectedComponents()
	assert.Equal(t, 3, numComponents)
	assert.Equal(t, comp[0], comp[2])
	assert.Equal(t, comp[3], comp[4])
	assert.NotEqual(t, comp[0], comp[3])
	assert.NotEqual(t, comp[5], comp[0])

	largest := g.LargestWeaklyConnectedComponent()
	require.Equal(t, 3, largest.NumberOfVertices())
	assert.Equal(t, 2, largest.NumberOfEdges())

	osmIds := make([]int64, 0, 3)
	largest.ForVertices(func(v *Vertex) {
		osmIds = append(osmIds, v.GetOsmID())
	})
	assert.Equal(t, []int64{10, 11, 12}, osmIds)

	heads := make([]Index, 0)
	largest.ForOutEdgesOf(2, func(e *OutEdge) {
		heads = append(heads, e.GetHead())
		assert.Equal(t, 2.0, e.GetLength())
	})
	assert.Equal(t, []Index{1}, heads)
}

func TestLargestComponentOfConnectedGraph(t *testing.T) {
	g := buildTestGraph()
	assert.Same(t, g, g.LargestWeaklyConnectedComponent())
}
