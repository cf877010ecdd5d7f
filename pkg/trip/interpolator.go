package trip

import (
	"fmt"
	"strings"
	"time"

	"github.com/lintang-b-s/biketrips/pkg/datastructure"
	"github.com/lintang-b-s/biketrips/pkg/geo"
	"github.com/lintang-b-s/biketrips/pkg/util"
)

type InterpolationMode uint8

const (
	// IndexUniform: every hop takes the same time, whatever its length.
	IndexUniform InterpolationMode = iota
	// DistanceWeighted: constant speed along the route geometry.
	DistanceWeighted
)

func ParseInterpolationMode(s string) (InterpolationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "index":
		return IndexUniform, nil
	case "distance":
		return DistanceWeighted, nil
	}
	return IndexUniform, util.WrapErrorf(nil, util.ErrBadParamInput, "unknown interpolation mode %q", s)
}

func (m InterpolationMode) String() string {
	switch m {
	case IndexUniform:
		return "index"
	case DistanceWeighted:
		return "distance"
	}
	return fmt.Sprintf("InterpolationMode(%d)", uint8(m))
}

type Interpolator struct {
	mode InterpolationMode
}

func NewInterpolator(mode InterpolationMode) *Interpolator {
	return &Interpolator{mode: mode}
}

func (ip *Interpolator) GetMode() InterpolationMode {
	return ip.mode
}

// Interpolate assigns node i of route the time start + i*duration/max(N-1, 1) (index mode),
// or start + duration*traveled_i/total (distance mode). Timestamps are non-decreasing and
// span [start time, end time]. route must not be empty.
func (ip *Interpolator) Interpolate(trip datastructure.ValidatedTrip, route datastructure.Route) (datastructure.TimestampedRoute, error) {
	nodes := route.GetNodes()
	if len(nodes) == 0 {
		return datastructure.TimestampedRoute{}, util.WrapErrorf(nil, util.ErrNoRoute,
			"cannot interpolate an empty route of vehicle %s", trip.GetVehicleID())
	}

	var fractions []float64
	if ip.mode == DistanceWeighted {
		fractions = distanceFractions(nodes)
	}

	start := trip.GetStartTime()
	duration := trip.GetDuration()
	hops := int64(max(len(nodes)-1, 1))

	timestamped := make([]datastructure.TimestampedNode, len(nodes))
	for i, coord := range nodes {
		var offset time.Duration
		if fractions != nil {
			offset = time.Duration(float64(duration) * fractions[i])
		} else {
			offset = time.Duration(int64(duration) * int64(i) / hops)
		}
		timestamped[i] = datastructure.NewTimestampedNode(coord, start.Add(offset))
	}

	return datastructure.NewTimestampedRoute(trip, route.GetPathLength(), timestamped), nil
}

// distanceFractions returns the traveled share of the route at every node, nil when the
// route has no length.
func distanceFractions(nodes []geo.Coordinate) []float64 {
	cumulative := make([]float64, len(nodes))
	for i := 1; i < len(nodes); i++ {
		cumulative[i] = cumulative[i-1] + geo.CalculateHaversineDistance(nodes[i-1].GetLat(), nodes[i-1].GetLon(),
			nodes[i].GetLat(), nodes[i].GetLon())
	}
	total := cumulative[len(cumulative)-1]
	if total <= 0 {
		return nil
	}
	for i := range cumulative {
		cumulative[i] /= total
	}
	cumulative[len(cumulative)-1] = 1
	return cumulative
}
