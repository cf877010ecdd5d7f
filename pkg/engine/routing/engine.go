package routing

import (
	"sync"

	da "github.com/lintang-b-s/biketrips/pkg/datastructure"
	"github.com/lintang-b-s/biketrips/pkg/util"
	"go.uber.org/zap"
)

type RoutingEngine struct {
	graph   *da.Graph
	logger  *zap.Logger
	bufPool sync.Pool
}

func NewRoutingEngine(graph *da.Graph, logger *zap.Logger) *RoutingEngine {
	e := &RoutingEngine{
		graph:  graph,
		logger: logger,
	}
	e.BuildBufferPool()
	return e
}

func (re *RoutingEngine) GetGraph() *da.Graph {
	return re.graph
}

// BuildBufferPool sizes the search buffers to the graph so concurrent queries do not reallocate labels.
func (re *RoutingEngine) BuildBufferPool() {
	n := 0
	if re.graph != nil {
		n = re.graph.NumberOfVertices()
	}
	re.bufPool = sync.Pool{
		New: func() any {
			return newSearchBuffer(n)
		},
	}
}

// ShortestPath is safe for concurrent use.
// Unknown vertices and unreachable targets are util.ErrNoRoute, an empty graph is util.ErrGraphUnusable.
func (re *RoutingEngine) ShortestPath(s, t da.Index) (float64, []da.Index, error) {
	if re.graph == nil || re.graph.NumberOfVertices() == 0 {
		return 0, nil, util.WrapErrorf(nil, util.ErrGraphUnusable, "road graph is empty")
	}
	if !re.graph.HasVertex(s) {
		return 0, nil, util.WrapErrorf(nil, util.ErrNoRoute, "vertex %d not in graph", s)
	}
	if !re.graph.HasVertex(t) {
		return 0, nil, util.WrapErrorf(nil, util.ErrNoRoute, "vertex %d not in graph", t)
	}
	if s == t {
		return 0, []da.Index{s}, nil
	}

	buf := re.bufPool.Get().(*searchBuffer)
	defer func() {
		buf.reset()
		re.bufPool.Put(buf)
	}()

	dijkstra := NewDijkstra(re, buf)
	return dijkstra.ShortestPath(s, t)
}
