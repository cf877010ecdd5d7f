package osmparser

import (
	"testing"

	"github.com/lintang-b-s/biketrips/pkg/datastructure"
	"github.com/lintang-b-s/biketrips/pkg/geo"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newWay(id int64, nodeIDs []int64, tags map[string]string) *osm.Way {
	wayNodes := make(osm.WayNodes, 0, len(nodeIDs))
	for _, n := range nodeIDs {
		wayNodes = append(wayNodes, osm.WayNode{ID: osm.NodeID(n)})
	}
	osmTags := make(osm.Tags, 0, len(tags))
	for k, v := range tags {
		osmTags = append(osmTags, osm.Tag{Key: k, Value: v})
	}
	return &osm.Way{ID: osm.WayID(id), Nodes: wayNodes, Tags: osmTags}
}

// parseWays runs both passes over in-memory nodes and ways.
func parseWays(p *OsmParser, nodes []*osm.Node, ways []*osm.Way) *datastructure.Graph {
	for _, w := range ways {
		p.scanWay(w)
	}
	for _, n := range nodes {
		p.acceptNode(n)
	}
	scannedEdges := make([]datastructure.Edge, 0)
	for _, w := range ways {
		p.processWay(w, &scannedEdges)
	}
	return p.buildCityGraph(scannedEdges, zap.NewNop())
}

func testNodes() []*osm.Node {
	return []*osm.Node{
		{ID: 1, Lat: -7.550, Lon: 110.780},
		{ID: 2, Lat: -7.551, Lon: 110.780},
		{ID: 3, Lat: -7.552, Lon: 110.780},
		{ID: 4, Lat: -7.551, Lon: 110.781},
		{ID: 5, Lat: -7.700, Lon: 110.780},
	}
}

func TestAcceptBikeWay(t *testing.T) {
	testCases := []struct {
		name string
		tags map[string]string
		want bool
	}{
		{name: "residential", tags: map[string]string{"highway": "residential"}, want: true},
		{name: "cycleway", tags: map[string]string{"highway": "cycleway"}, want: true},
		{name: "no highway tag", tags: map[string]string{"building": "yes"}, want: false},
		{name: "motorway", tags: map[string]string{"highway": "motorway"}, want: false},
		{name: "footway", tags: map[string]string{"highway": "footway"}, want: false},
		{name: "steps", tags: map[string]string{"highway": "steps"}, want: false},
		{name: "bicycle no", tags: map[string]string{"highway": "primary", "bicycle": "no"}, want: false},
		{name: "private access", tags: map[string]string{"highway": "service", "access": "private"}, want: false},
		{name: "private access but bikes designated", tags: map[string]string{"highway": "track", "access": "private", "bicycle": "designated"}, want: true},
		{name: "private service road", tags: map[string]string{"highway": "service", "service": "private"}, want: false},
		{name: "pedestrian area", tags: map[string]string{"highway": "pedestrian", "area": "yes"}, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, acceptBikeWay(newWay(1, []int64{1, 2}, tc.tags)))
		})
	}
}

func TestGetBikeDirection(t *testing.T) {
	testCases := []struct {
		name string
		tags map[string]string
		want wayDirection
	}{
		{name: "two way", tags: map[string]string{"highway": "residential"}, want: wayDirection{true, true}},
		{name: "oneway", tags: map[string]string{"highway": "residential", "oneway": "yes"}, want: wayDirection{forward: true}},
		{name: "reverse oneway", tags: map[string]string{"highway": "residential", "oneway": "-1"}, want: wayDirection{backward: true}},
		{name: "roundabout", tags: map[string]string{"highway": "primary", "junction": "roundabout"}, want: wayDirection{forward: true}},
		{name: "oneway with bicycle contraflow", tags: map[string]string{"highway": "residential", "oneway": "yes", "oneway:bicycle": "no"}, want: wayDirection{true, true}},
		{name: "oneway with opposite lane", tags: map[string]string{"highway": "residential", "oneway": "yes", "cycleway": "opposite_lane"}, want: wayDirection{true, true}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, getBikeDirection(newWay(1, []int64{1, 2}, tc.tags)))
		})
	}
}

func TestParseSplitsWaysAtJunctions(t *testing.T) {
	p := NewOSMParser(nil)
	ways := []*osm.Way{
		newWay(10, []int64{1, 2, 3}, map[string]string{"highway": "residential"}),
		newWay(11, []int64{2, 4}, map[string]string{"highway": "cycleway"}),
	}

	graph := parseWays(p, testNodes(), ways)

	require.Equal(t, 4, graph.NumberOfVertices())
	// 1-2, 2-3 and 2-4, both directions
	assert.Equal(t, 6, graph.NumberOfEdges())

	junction := p.nodeIDMap[2]
	assert.Equal(t, datastructure.Index(3), graph.GetOutDegree(junction))

	v := graph.GetVertex(junction)
	assert.Equal(t, int64(2), v.GetOsmID())
	assert.InDelta(t, -7.551, v.GetLat(), 1e-9)

	graph.ForOutEdges(func(e *datastructure.OutEdge, tail datastructure.Index) {
		// every edge spans 0.001 degree, 110.2 to 111.2 meters at this latitude
		assert.InDelta(t, 110.7, e.GetLength(), 0.6)
	})
}

func TestParseOneway(t *testing.T) {
	p := NewOSMParser(nil)
	ways := []*osm.Way{
		newWay(10, []int64{1, 2, 3}, map[string]string{"highway": "residential", "oneway": "yes"}),
	}

	graph := parseWays(p, testNodes(), ways)

	require.Equal(t, 2, graph.NumberOfVertices())
	require.Equal(t, 1, graph.NumberOfEdges())

	from := p.nodeIDMap[1]
	to := p.nodeIDMap[3]
	graph.ForOutEdgesOf(from, func(e *datastructure.OutEdge) {
		assert.Equal(t, to, e.GetHead())
		assert.InDelta(t, 222.39, e.GetLength(), 1)
	})
	assert.Equal(t, datastructure.Index(0), graph.GetOutDegree(to))
}

func TestParseTruncatesToCityBoundary(t *testing.T) {
	boundary := geo.NewCityBoundary(-7.551, 110.780, 1000)
	p := NewOSMParser(&boundary)
	ways := []*osm.Way{
		newWay(10, []int64{1, 2, 3, 5}, map[string]string{"highway": "secondary"}),
	}

	graph := parseWays(p, testNodes(), ways)

	_, outside := p.nodeIDMap[5]
	assert.False(t, outside)
	require.Equal(t, 2, graph.NumberOfVertices())
	assert.Equal(t, 2, graph.NumberOfEdges())

	got, ok := graph.GetBoundary()
	require.True(t, ok)
	assert.True(t, got.Equal(boundary))
}

func TestParseKeepsShortestParallelEdge(t *testing.T) {
	p := NewOSMParser(nil)
	ways := []*osm.Way{
		newWay(10, []int64{1, 4, 2}, map[string]string{"highway": "residential"}),
		newWay(11, []int64{1, 2}, map[string]string{"highway": "residential"}),
	}

	graph := parseWays(p, testNodes(), ways)

	require.Equal(t, 2, graph.NumberOfVertices())
	require.Equal(t, 2, graph.NumberOfEdges())
	graph.ForOutEdges(func(e *datastructure.OutEdge, tail datastructure.Index) {
		assert.InDelta(t, 111.19, e.GetLength(), 0.5)
	})
}
