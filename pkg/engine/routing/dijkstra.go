package routing

import (
	"math"

	da "github.com/lintang-b-s/biketrips/pkg/datastructure"
	"github.com/lintang-b-s/biketrips/pkg/util"
)

const INF_WEIGHT = math.MaxFloat64

// searchBuffer holds the per-query labels. Only touched vertices are reset between queries.
type searchBuffer struct {
	dist     []float64
	parent   []da.Index
	heapNode []*da.PriorityQueueNode[da.Index]
	settled  []bool
	touched  []da.Index
	pq       *da.MinHeap[da.Index]
}

func newSearchBuffer(n int) *searchBuffer {
	buf := &searchBuffer{
		dist:     make([]float64, n),
		parent:   make([]da.Index, n),
		heapNode: make([]*da.PriorityQueueNode[da.Index], n),
		settled:  make([]bool, n),
		touched:  make([]da.Index, 0, 1024),
		pq:       da.NewFourAryHeap[da.Index](),
	}
	for i := 0; i < n; i++ {
		buf.dist[i] = INF_WEIGHT
		buf.parent[i] = da.INVALID_VERTEX_ID
	}
	buf.pq.Preallocate(1024)
	return buf
}

func (buf *searchBuffer) label(v, parent da.Index, dist float64) {
	if buf.dist[v] == INF_WEIGHT {
		buf.touched = append(buf.touched, v)
	}
	buf.dist[v] = dist
	buf.parent[v] = parent
}

func (buf *searchBuffer) reset() {
	for _, v := range buf.touched {
		buf.dist[v] = INF_WEIGHT
		buf.parent[v] = da.INVALID_VERTEX_ID
		buf.heapNode[v] = nil
		buf.settled[v] = false
	}
	buf.touched = buf.touched[:0]
	buf.pq.Clear()
}

// Dijkstra is a unidirectional point-to-point search weighted by edge length in meters.
// It stops as soon as the target is settled.
type Dijkstra struct {
	engine *RoutingEngine
	buf    *searchBuffer

	numSettledNodes int
}

func NewDijkstra(engine *RoutingEngine, buf *searchBuffer) *Dijkstra {
	return &Dijkstra{
		engine: engine,
		buf:    buf,
	}
}

func (us *Dijkstra) GetNumSettledNodes() int {
	return us.numSettledNodes
}

// ShortestPath returns the length of the shortest path from s to t and its vertices, s and t included.
func (us *Dijkstra) ShortestPath(s, t da.Index) (float64, []da.Index, error) {
	graph := us.engine.graph
	buf := us.buf

	buf.label(s, da.INVALID_VERTEX_ID, 0)
	sNode := da.NewPriorityQueueNode(0, s)
	buf.heapNode[s] = sNode
	buf.pq.Insert(sNode)

	found := false
	for !buf.pq.IsEmpty() {
		minNode, _ := buf.pq.ExtractMin()
		u := minNode.GetItem()
		buf.settled[u] = true
		us.numSettledNodes++

		if u == t {
			found = true
			break
		}

		uDist := buf.dist[u]
		graph.ForOutEdgesOf(u, func(e *da.OutEdge) {
			v := e.GetHead()
			if buf.settled[v] {
				return
			}

			newDist := uDist + e.GetLength()
			if newDist >= buf.dist[v] {
				return
			}

			vAlreadyLabelled := buf.dist[v] < INF_WEIGHT
			buf.label(v, u, newDist)
			if vAlreadyLabelled {
				buf.pq.DecreaseKey(buf.heapNode[v], newDist)
				return
			}
			vNode := da.NewPriorityQueueNode(newDist, v)
			buf.heapNode[v] = vNode
			buf.pq.Insert(vNode)
		})
	}

	if !found {
		return 0, nil, util.WrapErrorf(nil, util.ErrNoRoute, "no path from vertex %d to vertex %d", s, t)
	}

	path := make([]da.Index, 0, 64)
	for v := t; v != da.INVALID_VERTEX_ID; v = buf.parent[v] {
		path = append(path, v)
	}

	return buf.dist[t], util.ReverseG(path), nil
}
