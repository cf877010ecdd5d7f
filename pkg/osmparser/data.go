package osmparser

type NodeType uint8

const (
	END_NODE NodeType = iota
	BETWEEN_NODE
	JUNCTION_NODE
)

type NodeCoord struct {
	lat float64
	lon float64
}

func NewNodeCoord(lat, lon float64) NodeCoord {
	return NodeCoord{lat, lon}
}

func (n NodeCoord) GetLat() float64 {
	return n.lat
}

func (n NodeCoord) GetLon() float64 {
	return n.lon
}

type node struct {
	id    int64
	coord NodeCoord
}

var (
	// highway values never usable by bicycles (same exclusions as the osmnx "bike" network type)
	rejectedBikeHighway = map[string]struct{}{
		"abandoned":     {},
		"bus_guideway":  {},
		"construction":  {},
		"corridor":      {},
		"elevator":      {},
		"escalator":     {},
		"footway":       {},
		"motor":         {},
		"motorway":      {},
		"motorway_link": {},
		"no":            {},
		"planned":       {},
		"platform":      {},
		"proposed":      {},
		"raceway":       {},
		"razed":         {},
		"steps":         {},
	}

	bicycleAllowed = map[string]struct{}{
		"yes":         {},
		"designated":  {},
		"permissive":  {},
		"destination": {},
	}
)
