package spatialindex

import (
	"math"

	"github.com/lintang-b-s/biketrips/pkg/datastructure"
	"github.com/lintang-b-s/biketrips/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

// Rtree indexes graph vertices as points for nearest-node snapping.
type Rtree struct {
	tr *rtree.RTreeG[datastructure.Index]
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[datastructure.Index]
	return &Rtree{
		tr: &tr,
	}
}

// Build inserts every vertex of graph as a point.
func (rt *Rtree) Build(graph *datastructure.Graph, log *zap.Logger) {
	log.Info("Building R-tree spatial index...", zap.Int("vertices", graph.NumberOfVertices()))
	graph.ForVertices(func(v *datastructure.Vertex) {
		p := [2]float64{v.GetLon(), v.GetLat()}
		rt.tr.Insert(p, p, v.GetID())
	})
	log.Info("R-tree spatial index built.")
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

// SearchWithinRadius returns all vertices inside the bounding box of radius (in km) around (qLat, qLon).
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64) []datastructure.Index {
	lowerLat, lowerLon := geo.GetDestinationPoint(qLat, qLon, 225, radius*math.Sqrt2)
	upperLat, upperLon := geo.GetDestinationPoint(qLat, qLon, 45, radius*math.Sqrt2)

	results := make([]datastructure.Index, 0, 16)
	rt.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, data datastructure.Index) bool {
			results = append(results, data)
			return true
		})
	return results
}

// NearestVertex returns the vertex closest (haversine) to (qLat, qLon). The search box starts at
// initialRadius km and doubles up to maxRadius km; the last step searches exactly maxRadius.
func (rt *Rtree) NearestVertex(graph *datastructure.Graph, qLat, qLon, initialRadius, maxRadius float64) (datastructure.Index, float64, bool) {
	radius := min(initialRadius, maxRadius)
	for {
		candidates := rt.SearchWithinRadius(qLat, qLon, radius)
		if len(candidates) > 0 {
			best := datastructure.INVALID_VERTEX_ID
			bestDist := math.Inf(1)
			for _, c := range candidates {
				lat, lon := graph.GetVertexCoordinates(c)
				dist := geo.CalculateHaversineDistance(qLat, qLon, lat, lon)
				if dist < bestDist || (dist == bestDist && c < best) {
					best, bestDist = c, dist
				}
			}
			// a vertex outside the circle may be in the box while a closer one lies just outside it
			if bestDist <= radius || radius >= maxRadius {
				return best, bestDist, true
			}
		}
		if radius >= maxRadius {
			return datastructure.INVALID_VERTEX_ID, 0, false
		}
		radius = min(radius*2, maxRadius)
	}
}
