package resolver

import (
	"errors"

	"github.com/lintang-b-s/biketrips/pkg/datastructure"
	"github.com/lintang-b-s/biketrips/pkg/geo"
	"github.com/lintang-b-s/biketrips/pkg/util"
	"go.uber.org/zap"
)

// RoutingOracle snaps coordinates to graph nodes and answers length-weighted shortest path queries.
// Errors coded util.ErrNoRoute are per-trip, any other error means the graph is unusable.
type RoutingOracle interface {
	NearestNode(lat, lon float64) (datastructure.Index, error)
	ShortestPath(s, t datastructure.Index) (float64, []datastructure.Index, error)
	GetVertexCoordinate(v datastructure.Index) geo.Coordinate
}

type RouteResolver struct {
	oracle RoutingOracle
	logger *zap.Logger
}

func NewRouteResolver(oracle RoutingOracle, logger *zap.Logger) *RouteResolver {
	return &RouteResolver{
		oracle: oracle,
		logger: logger,
	}
}

// Resolve returns the shortest route between the snapped endpoints of trip.
// When a snap target is outside the graph or no path exists it returns datastructure.NoRoute()
// and a nil error; other oracle errors are returned coded util.ErrGraphUnusable.
func (rr *RouteResolver) Resolve(trip datastructure.ValidatedTrip) (datastructure.Route, error) {
	start, end := trip.GetStart(), trip.GetEnd()

	s, err := rr.oracle.NearestNode(start.GetLat(), start.GetLon())
	if err != nil {
		return rr.handleOracleError(trip, err)
	}
	t, err := rr.oracle.NearestNode(end.GetLat(), end.GetLon())
	if err != nil {
		return rr.handleOracleError(trip, err)
	}

	pathLength, path, err := rr.oracle.ShortestPath(s, t)
	if err != nil {
		return rr.handleOracleError(trip, err)
	}
	if len(path) == 0 {
		return rr.handleOracleError(trip, util.WrapErrorf(nil, util.ErrNoRoute, "empty path from %d to %d", s, t))
	}

	nodes := make([]geo.Coordinate, len(path))
	for i, v := range path {
		nodes[i] = rr.oracle.GetVertexCoordinate(v)
	}
	return datastructure.NewRoute(nodes, pathLength), nil
}

func (rr *RouteResolver) handleOracleError(trip datastructure.ValidatedTrip, err error) (datastructure.Route, error) {
	if errors.Is(err, util.ErrNoRoute) {
		rr.logger.Debug("no route for trip",
			zap.String("vehicle_id", trip.GetVehicleID()),
			zap.Time("start_time", trip.GetStartTime()),
			zap.Error(err))
		return datastructure.NoRoute(), nil
	}
	if errors.Is(err, util.ErrGraphUnusable) {
		return datastructure.NoRoute(), err
	}
	return datastructure.NoRoute(), util.WrapErrorf(err, util.ErrGraphUnusable,
		"routing oracle failed for vehicle %s", trip.GetVehicleID())
}
