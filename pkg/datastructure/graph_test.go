package datastructure

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/biketrips/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestGraph() *Graph {
	vertices := []Vertex{
		NewVertex(50.000, 8.000, 0, 100),
		NewVertex(50.001, 8.000, 1, 101),
		NewVertex(50.001, 8.001, 2, 102),
		NewVertex(50.002, 8.002, 3, 103),
	}
	edges := []Edge{
		NewEdge(1, 2, 71.5),
		NewEdge(0, 1, 111.2),
		NewEdge(1, 0, 111.2),
		NewEdge(2, 3, 133.0),
		NewEdge(3, 9, 10), // unknown head, dropped
	}
	return NewGraph(vertices, edges)
}

func TestNewGraph(t *testing.T) {
	g := buildTestGraph()

	assert.Equal(t, 4, g.NumberOfVertices())
	assert.Equal(t, 4, g.NumberOfEdges())
	assert.Equal(t, Index(2), g.GetOutDegree(1))
	assert.Equal(t, Index(0), g.GetOutDegree(3))
	assert.True(t, g.HasVertex(3))
	assert.False(t, g.HasVertex(4))

	heads := []Index{}
	g.ForOutEdgesOf(1, func(e *OutEdge) {
		heads = append(heads, e.GetHead())
	})
	assert.Equal(t, []Index{2, 0}, heads)

	bb := g.GetBoundingBox()
	assert.Equal(t, 50.000, bb.GetMinLat())
	assert.Equal(t, 8.002, bb.GetMaxLon())
	assert.True(t, bb.Contains(50.001, 8.001))
}

func TestWriteReadGraph(t *testing.T) {
	g := buildTestGraph()
	path := filepath.Join(t.TempDir(), "city.graph")

	require.NoError(t, g.WriteGraph(path))

	got, err := ReadGraph(path)
	require.NoError(t, err)

	assert.Equal(t, g.NumberOfVertices(), got.NumberOfVertices())
	assert.Equal(t, g.NumberOfEdges(), got.NumberOfEdges())
	for v := Index(0); v < Index(g.NumberOfVertices()); v++ {
		assert.Equal(t, g.GetVertex(v), got.GetVertex(v))
		lengths := []float64{}
		g.ForOutEdgesOf(v, func(e *OutEdge) { lengths = append(lengths, e.GetLength()) })
		gotLengths := []float64{}
		got.ForOutEdgesOf(v, func(e *OutEdge) { gotLengths = append(gotLengths, e.GetLength()) })
		assert.Equal(t, lengths, gotLengths)
	}
}

func TestWriteReadGraphBoundary(t *testing.T) {
	g := buildTestGraph()
	g.SetBoundary(geo.NewCityBoundary(50.001, 8.001, 10000))
	path := filepath.Join(t.TempDir(), "city.graph")

	require.NoError(t, g.WriteGraph(path))
	_, err := os.Stat(path + ".tmp")
	assert.True(t, errors.Is(err, os.ErrNotExist))

	got, err := ReadGraph(path)
	require.NoError(t, err)
	boundary, ok := got.GetBoundary()
	require.True(t, ok)
	assert.True(t, boundary.Equal(geo.NewCityBoundary(50.001, 8.001, 10000)))
	assert.False(t, boundary.Equal(geo.NewCityBoundary(50.001, 8.001, 5000)))
	assert.Equal(t, g.NumberOfEdges(), got.NumberOfEdges())
}

func TestReadGraphWithoutBoundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "city.graph")
	require.NoError(t, buildTestGraph().WriteGraph(path))

	got, err := ReadGraph(path)
	require.NoError(t, err)
	_, ok := got.GetBoundary()
	assert.False(t, ok)
}
