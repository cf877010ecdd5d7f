package osmparser

import (
	"github.com/lintang-b-s/biketrips/pkg/datastructure"
)

// BuildGraph creates the graph vertices from the node id mapping and attaches scannedEdges.
func (p *OsmParser) BuildGraph(scannedEdges []datastructure.Edge) *datastructure.Graph {
	numV := len(p.nodeToOsmId)
	vertices := make([]datastructure.Vertex, numV)
	for v := 0; v < numV; v++ {
		osmId := p.nodeToOsmId[datastructure.Index(v)]
		coord := p.acceptedNodeMap[osmId]
		vertices[v] = datastructure.NewVertex(coord.lat, coord.lon, datastructure.Index(v), osmId)
	}

	return datastructure.NewGraph(vertices, scannedEdges)
}
