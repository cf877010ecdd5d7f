package routing

import (
	"errors"
	"sync"
	"testing"

	da "github.com/lintang-b-s/biketrips/pkg/datastructure"
	"github.com/lintang-b-s/biketrips/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// buildTestGraph:
//
//	0 --100--> 1 --100--> 2 --100--> 3
//	0 ------------350------------> 3
//	1 --50--> 4 --60--> 3
//	5 (isolated)
func buildTestGraph() *da.Graph {
	vertices := make([]da.Vertex, 6)
	for i := 0; i < 6; i++ {
		vertices[i] = da.NewVertex(-7.55+float64(i)*0.001, 110.78, da.Index(i), int64(100+i))
	}
	edges := []da.Edge{
		da.NewEdge(0, 1, 100),
		da.NewEdge(1, 2, 100),
		da.NewEdge(2, 3, 100),
		da.NewEdge(0, 3, 350),
		da.NewEdge(1, 4, 50),
		da.NewEdge(4, 3, 60),
	}
	return da.NewGraph(vertices, edges)
}

func TestShortestPath(t *testing.T) {
	engine := NewRoutingEngine(buildTestGraph(), zap.NewNop())

	testCases := []struct {
		name       string
		s, t       da.Index
		wantLength float64
		wantPath   []da.Index
		wantErr    error
	}{
		{name: "detour shorter than direct edge", s: 0, t: 3, wantLength: 210, wantPath: []da.Index{0, 1, 4, 3}},
		{name: "single edge", s: 1, t: 2, wantLength: 100, wantPath: []da.Index{1, 2}},
		{name: "same vertex", s: 2, t: 2, wantLength: 0, wantPath: []da.Index{2}},
		{name: "edges are directed", s: 3, t: 0, wantErr: util.ErrNoRoute},
		{name: "isolated vertex", s: 0, t: 5, wantErr: util.ErrNoRoute},
		{name: "vertex not in graph", s: 0, t: 42, wantErr: util.ErrNoRoute},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			length, path, err := engine.ShortestPath(tc.s, tc.t)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantErr))
				assert.Empty(t, path)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.wantLength, length, 1e-9)
			assert.Equal(t, tc.wantPath, path)
		})
	}
}

func TestShortestPathEmptyGraph(t *testing.T) {
	engine := NewRoutingEngine(da.NewGraph(nil, nil), zap.NewNop())

	_, _, err := engine.ShortestPath(0, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrGraphUnusable))
	assert.False(t, errors.Is(err, util.ErrNoRoute))
}

func TestShortestPathReusesBuffers(t *testing.T) {
	engine := NewRoutingEngine(buildTestGraph(), zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				length, path, err := engine.ShortestPath(0, 3)
				assert.NoError(t, err)
				assert.InDelta(t, 210, length, 1e-9)
				assert.Equal(t, []da.Index{0, 1, 4, 3}, path)

				_, _, err = engine.ShortestPath(0, 5)
				assert.True(t, errors.Is(err, util.ErrNoRoute))
			}
		}()
	}
	wg.Wait()
}

func TestDijkstraStopsAtTarget(t *testing.T) {
	engine := NewRoutingEngine(buildTestGraph(), zap.NewNop())

	testCases := []struct {
		name        string
		s, t        da.Index
		wantSettled int
	}{
		{name: "neighbour settles two vertices", s: 0, t: 1, wantSettled: 2},
		{name: "target settled last", s: 0, t: 3, wantSettled: 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := newSearchBuffer(engine.GetGraph().NumberOfVertices())
			dijkstra := NewDijkstra(engine, buf)
			_, _, err := dijkstra.ShortestPath(tc.s, tc.t)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSettled, dijkstra.GetNumSettledNodes())
		})
	}
}
