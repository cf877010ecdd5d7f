package datastructure

import (
	"math"
	"sort"

	"github.com/lintang-b-s/biketrips/pkg/geo"
)

type Index uint32

const (
	INVALID_VERTEX_ID Index = math.MaxUint32
	INVALID_EDGE_ID   Index = math.MaxUint32
)

type Vertex struct {
	lat   float64
	lon   float64
	id    Index
	osmId int64
}

func NewVertex(lat, lon float64, id Index, osmId int64) Vertex {
	return Vertex{
		lat:   lat,
		lon:   lon,
		id:    id,
		osmId: osmId,
	}
}

func (v *Vertex) GetID() Index {
	return v.id
}

func (v *Vertex) GetLat() float64 {
	return v.lat
}

func (v *Vertex) GetLon() float64 {
	return v.lon
}

func (v *Vertex) GetOsmID() int64 {
	return v.osmId
}

// Edge is a directed road segment used while building the graph.
type Edge struct {
	from, to Index
	length   float64 // meter
}

func NewEdge(from, to Index, length float64) Edge {
	return Edge{from: from, to: to, length: length}
}

func (e Edge) GetFrom() Index {
	return e.from
}

func (e Edge) GetTo() Index {
	return e.to
}

func (e Edge) GetLength() float64 {
	return e.length
}

type OutEdge struct {
	edgeId Index
	head   Index
	length float64 // meter
}

func NewOutEdge(edgeId, head Index, length float64) OutEdge {
	return OutEdge{
		edgeId: edgeId,
		head:   head,
		length: length,
	}
}

func (e *OutEdge) GetEdgeId() Index {
	return e.edgeId
}

func (e *OutEdge) GetHead() Index {
	return e.head
}

func (e *OutEdge) GetLength() float64 {
	return e.length
}

// Graph is a static road graph in compressed sparse row layout: the out edges of vertex v
// are outEdges[firstOut[v]:firstOut[v+1]]. It is read-only after construction and safe
// to share between concurrent queries.
type Graph struct {
	vertices    []Vertex
	firstOut    []Index
	outEdges    []OutEdge
	boundingBox *BoundingBox
	boundary    *geo.CityBoundary // nil when the graph was not truncated to a city
}

// NewGraph builds the graph from vertices (vertex i must have id i) and directed edges.
// Edges referencing unknown vertices are dropped.
func NewGraph(vertices []Vertex, edges []Edge) *Graph {
	n := Index(len(vertices))
	valid := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if e.from >= n || e.to >= n {
			continue
		}
		valid = append(valid, e)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].from < valid[j].from
	})

	firstOut := make([]Index, n+1)
	outEdges := make([]OutEdge, len(valid))
	for i, e := range valid {
		firstOut[e.from+1]++
		outEdges[i] = NewOutEdge(Index(i), e.to, e.length)
	}
	for v := Index(1); v <= n; v++ {
		firstOut[v] += firstOut[v-1]
	}

	g := &Graph{
		vertices: vertices,
		firstOut: firstOut,
		outEdges: outEdges,
	}
	g.boundingBox = g.computeBoundingBox()
	return g
}

func (g *Graph) computeBoundingBox() *BoundingBox {
	if len(g.vertices) == 0 {
		return NewBoundingBox(0, 0, 0, 0)
	}
	minLat, minLon := math.Inf(1), math.Inf(1)
	maxLat, maxLon := math.Inf(-1), math.Inf(-1)
	for _, v := range g.vertices {
		minLat = math.Min(minLat, v.lat)
		minLon = math.Min(minLon, v.lon)
		maxLat = math.Max(maxLat, v.lat)
		maxLon = math.Max(maxLon, v.lon)
	}
	return NewBoundingBox(minLat, minLon, maxLat, maxLon)
}

func (g *Graph) NumberOfVertices() int {
	return len(g.vertices)
}

func (g *Graph) NumberOfEdges() int {
	return len(g.outEdges)
}

func (g *Graph) HasVertex(v Index) bool {
	return v < Index(len(g.vertices))
}

func (g *Graph) GetVertex(v Index) Vertex {
	return g.vertices[v]
}

func (g *Graph) GetVertices() []Vertex {
	return g.vertices
}

func (g *Graph) GetVertexCoordinates(v Index) (float64, float64) {
	return g.vertices[v].lat, g.vertices[v].lon
}

func (g *Graph) GetOutDegree(v Index) Index {
	return g.firstOut[v+1] - g.firstOut[v]
}

func (g *Graph) GetBoundingBox() *BoundingBox {
	return g.boundingBox
}

// SetBoundary records the city boundary the graph was built for. WriteGraph stores it.
func (g *Graph) SetBoundary(boundary geo.CityBoundary) {
	g.boundary = &boundary
}

func (g *Graph) GetBoundary() (geo.CityBoundary, bool) {
	if g.boundary == nil {
		return geo.CityBoundary{}, false
	}
	return *g.boundary, true
}

func (g *Graph) ForOutEdgesOf(u Index, handle func(e *OutEdge)) {
	for i := g.firstOut[u]; i < g.firstOut[u+1]; i++ {
		handle(&g.outEdges[i])
	}
}

func (g *Graph) ForVertices(handle func(v *Vertex)) {
	for i := range g.vertices {
		handle(&g.vertices[i])
	}
}

// ForOutEdges iterates all edges with their tail vertex.
func (g *Graph) ForOutEdges(handle func(e *OutEdge, tail Index)) {
	for u := Index(0); u < Index(len(g.vertices)); u++ {
		g.ForOutEdgesOf(u, func(e *OutEdge) {
			handle(e, u)
		})
	}
}
