package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lintang-b-s/biketrips/pkg/datastructure"
	"github.com/lintang-b-s/biketrips/pkg/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

// OsmParser builds the bicycle road graph of a city from an OpenStreetMap PBF extract.
// Ways are split at junction nodes, so graph vertices are intersections and way ends,
// and edge lengths are the great-circle length of the way geometry in meters.
type OsmParser struct {
	wayNodeMap      map[int64]NodeType
	acceptedNodeMap map[int64]NodeCoord
	nodeIDMap       map[int64]datastructure.Index
	nodeToOsmId     map[datastructure.Index]int64
	edgeSet         map[datastructure.Index]map[datastructure.Index]int // (from,to) -> position in scannedEdges
	boundary        *geo.CityBoundary
}

func NewOSMParser(boundary *geo.CityBoundary) *OsmParser {
	return &OsmParser{
		wayNodeMap:      make(map[int64]NodeType),
		acceptedNodeMap: make(map[int64]NodeCoord),
		nodeIDMap:       make(map[int64]datastructure.Index),
		nodeToOsmId:     make(map[datastructure.Index]int64),
		edgeSet:         make(map[datastructure.Index]map[datastructure.Index]int),
		boundary:        boundary,
	}
}

func (p *OsmParser) SetAcceptedNodeMap(acceptedNodeMap map[int64]NodeCoord) {
	p.acceptedNodeMap = acceptedNodeMap
}

func (p *OsmParser) SetNodeToOsmId(nodeToOsmId map[datastructure.Index]int64) {
	p.nodeToOsmId = nodeToOsmId
}

func (p *OsmParser) Parse(ctx context.Context, mapFile string, logger *zap.Logger) (*datastructure.Graph, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return p.ParseReader(ctx, f, logger)
}

// ParseReader scans r twice: the first pass classifies way nodes (end, between, junction),
// the second collects node coordinates and turns accepted ways into edges.
func (p *OsmParser) ParseReader(ctx context.Context, r io.ReadSeeker, logger *zap.Logger) (*datastructure.Graph, error) {
	scanner := osmpbf.New(ctx, r, 0)
	// must not be parallel
	countWays := 0
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if p.scanWay(way) {
			countWays++
			if countWays%50000 == 0 {
				logger.Sugar().Infof("scanning openstreetmap ways: %d...", countWays)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("scan ways: %w", err)
	}
	scanner.Close()

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	scanner = osmpbf.New(ctx, r, 0)
	defer scanner.Close()

	scannedEdges := make([]datastructure.Edge, 0, countWays*2)
	countNodes := 0
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			if p.acceptNode(o) {
				countNodes++
				if countNodes%500000 == 0 {
					logger.Sugar().Infof("processing openstreetmap nodes: %d...", countNodes)
				}
			}
		case *osm.Way:
			p.processWay(o, &scannedEdges)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan nodes and ways: %w", err)
	}

	graph := p.buildCityGraph(scannedEdges, logger)

	logger.Sugar().Infof("number of vertices: %v", graph.NumberOfVertices())
	logger.Sugar().Infof("number of edges: %v", graph.NumberOfEdges())

	return graph, nil
}

// buildCityGraph keeps the largest weakly connected component of the scanned edges and
// records the city boundary.
func (p *OsmParser) buildCityGraph(scannedEdges []datastructure.Edge, logger *zap.Logger) *datastructure.Graph {
	graph := p.BuildGraph(scannedEdges)
	numAll := graph.NumberOfVertices()
	graph = graph.LargestWeaklyConnectedComponent()
	if dropped := numAll - graph.NumberOfVertices(); dropped > 0 {
		logger.Sugar().Infof("dropped %d vertices outside the largest connected component", dropped)
	}

	if p.boundary != nil {
		graph.SetBoundary(*p.boundary)
	}
	return graph
}

// scanWay marks the node types of an accepted way.
func (p *OsmParser) scanWay(way *osm.Way) bool {
	if len(way.Nodes) < 2 || !acceptBikeWay(way) {
		return false
	}

	for i, n := range way.Nodes {
		id := int64(n.ID)
		if _, ok := p.wayNodeMap[id]; !ok {
			if i == 0 || i == len(way.Nodes)-1 {
				p.wayNodeMap[id] = END_NODE
			} else {
				p.wayNodeMap[id] = BETWEEN_NODE
			}
		} else {
			p.wayNodeMap[id] = JUNCTION_NODE
		}
	}
	return true
}

// acceptNode keeps the coordinate of a node used by an accepted way and inside the city boundary.
func (p *OsmParser) acceptNode(n *osm.Node) bool {
	if _, ok := p.wayNodeMap[int64(n.ID)]; !ok {
		return false
	}
	if p.boundary != nil && !p.boundary.Contains(n.Lat, n.Lon) {
		return false
	}
	p.acceptedNodeMap[int64(n.ID)] = NewNodeCoord(n.Lat, n.Lon)
	return true
}

func (p *OsmParser) isJunctionNode(nodeID int64) bool {
	return p.wayNodeMap[nodeID] == JUNCTION_NODE
}

type wayDirection struct {
	forward, backward bool
}

func (p *OsmParser) processWay(way *osm.Way, scannedEdges *[]datastructure.Edge) {
	if len(way.Nodes) < 2 || !acceptBikeWay(way) {
		return
	}
	dir := getBikeDirection(way)

	waySegment := []node{}
	for _, wayNode := range way.Nodes {
		id := int64(wayNode.ID)
		coord, ok := p.acceptedNodeMap[id]
		if !ok {
			// node outside the city boundary, the way is cut here
			if len(waySegment) > 1 {
				p.addEdge(waySegment, dir, scannedEdges)
			}
			waySegment = []node{}
			continue
		}

		nodeData := node{id: id, coord: coord}
		waySegment = append(waySegment, nodeData)
		if p.isJunctionNode(id) && len(waySegment) > 1 {
			p.addEdge(waySegment, dir, scannedEdges)
			waySegment = []node{nodeData}
		}
	}
	if len(waySegment) > 1 {
		p.addEdge(waySegment, dir, scannedEdges)
	}
}

func (p *OsmParser) vertexID(n node) datastructure.Index {
	if id, ok := p.nodeIDMap[n.id]; ok {
		return id
	}
	id := datastructure.Index(len(p.nodeIDMap))
	p.nodeIDMap[n.id] = id
	p.nodeToOsmId[id] = n.id
	return id
}

func (p *OsmParser) addEdge(segment []node, dir wayDirection, scannedEdges *[]datastructure.Edge) {
	from := segment[0]
	to := segment[len(segment)-1]
	if from.id == to.id {
		// closed way without a junction in between
		if len(segment) < 3 {
			return
		}
		mid := len(segment) / 2
		p.addEdge(segment[:mid+1], dir, scannedEdges)
		p.addEdge(segment[mid:], dir, scannedEdges)
		return
	}

	distance := 0.0
	for i := 1; i < len(segment); i++ {
		distance += geo.CalculateHaversineDistance(segment[i-1].coord.lat, segment[i-1].coord.lon,
			segment[i].coord.lat, segment[i].coord.lon)
	}
	distanceInMeter := distance * 1000

	u := p.vertexID(from)
	v := p.vertexID(to)
	if dir.forward {
		p.appendEdge(u, v, distanceInMeter, scannedEdges)
	}
	if dir.backward {
		p.appendEdge(v, u, distanceInMeter, scannedEdges)
	}
}

// appendEdge keeps only the shortest of parallel edges.
func (p *OsmParser) appendEdge(u, v datastructure.Index, length float64, scannedEdges *[]datastructure.Edge) {
	if _, ok := p.edgeSet[u]; !ok {
		p.edgeSet[u] = make(map[datastructure.Index]int)
	}
	if pos, ok := p.edgeSet[u][v]; ok {
		if length < (*scannedEdges)[pos].GetLength() {
			(*scannedEdges)[pos] = datastructure.NewEdge(u, v, length)
		}
		return
	}
	p.edgeSet[u][v] = len(*scannedEdges)
	*scannedEdges = append(*scannedEdges, datastructure.NewEdge(u, v, length))
}

// acceptBikeWay reports whether a bicycle may ride on way.
func acceptBikeWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	if highway == "" {
		return false
	}
	if _, rejected := rejectedBikeHighway[highway]; rejected {
		return false
	}
	if way.Tags.Find("area") == "yes" {
		return false
	}

	bicycle := way.Tags.Find("bicycle")
	if bicycle == "no" || bicycle == "use_sidepath" {
		return false
	}
	if _, allowed := bicycleAllowed[bicycle]; allowed {
		return true
	}

	if access := way.Tags.Find("access"); access == "no" || access == "private" {
		return false
	}
	if way.Tags.Find("service") == "private" {
		return false
	}
	return true
}

func getBikeDirection(way *osm.Way) wayDirection {
	if isContraflowAllowed(way) {
		return wayDirection{forward: true, backward: true}
	}

	oneway := way.Tags.Find("oneway")
	switch oneway {
	case "yes", "true", "1":
		return wayDirection{forward: true}
	case "-1", "reverse":
		return wayDirection{backward: true}
	}
	if oneway == "" {
		junction := way.Tags.Find("junction")
		if junction == "roundabout" || junction == "circular" {
			return wayDirection{forward: true}
		}
	}
	return wayDirection{forward: true, backward: true}
}

// isContraflowAllowed: bicycles may ride both ways on a oneway street.
func isContraflowAllowed(way *osm.Way) bool {
	if way.Tags.Find("oneway:bicycle") == "no" {
		return true
	}
	return strings.HasPrefix(way.Tags.Find("cycleway"), "opposite")
}
