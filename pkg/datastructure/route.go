package datastructure

import (
	"time"

	"github.com/lintang-b-s/biketrips/pkg/geo"
)

// Route ordered node coordinates of a shortest path and its length in meters.
// An empty node list is the "no route" result.
type Route struct {
	nodes      []geo.Coordinate
	pathLength float64
}

func NewRoute(nodes []geo.Coordinate, pathLength float64) Route {
	return Route{
		nodes:      nodes,
		pathLength: pathLength,
	}
}

func NoRoute() Route {
	return Route{nodes: []geo.Coordinate{}, pathLength: 0}
}

func (r Route) GetNodes() []geo.Coordinate {
	return r.nodes
}

func (r Route) GetPathLength() float64 {
	return r.pathLength
}

func (r Route) NumberOfNodes() int {
	return len(r.nodes)
}

func (r Route) IsEmpty() bool {
	return len(r.nodes) == 0
}

type TimestampedNode struct {
	coord     geo.Coordinate
	timestamp time.Time
}

func NewTimestampedNode(coord geo.Coordinate, timestamp time.Time) TimestampedNode {
	return TimestampedNode{coord: coord, timestamp: timestamp}
}

func (n TimestampedNode) GetCoordinate() geo.Coordinate {
	return n.coord
}

func (n TimestampedNode) GetTimestamp() time.Time {
	return n.timestamp
}

// TimestampedRoute the final per-trip artifact handed to the exporters.
type TimestampedRoute struct {
	trip       ValidatedTrip
	pathLength float64
	nodes      []TimestampedNode
}

func NewTimestampedRoute(trip ValidatedTrip, pathLength float64, nodes []TimestampedNode) TimestampedRoute {
	return TimestampedRoute{
		trip:       trip,
		pathLength: pathLength,
		nodes:      nodes,
	}
}

func (r TimestampedRoute) GetTrip() ValidatedTrip {
	return r.trip
}

func (r TimestampedRoute) GetVehicleID() string {
	return r.trip.GetVehicleID()
}

func (r TimestampedRoute) GetStartTime() time.Time {
	return r.trip.GetStartTime()
}

func (r TimestampedRoute) GetEndTime() time.Time {
	return r.trip.GetEndTime()
}

func (r TimestampedRoute) GetDurationSeconds() float64 {
	return r.trip.GetDurationSeconds()
}

func (r TimestampedRoute) GetPathLength() float64 {
	return r.pathLength
}

func (r TimestampedRoute) GetNodes() []TimestampedNode {
	return r.nodes
}

func (r TimestampedRoute) GetCoordinates() []geo.Coordinate {
	coords := make([]geo.Coordinate, len(r.nodes))
	for i, n := range r.nodes {
		coords[i] = n.coord
	}
	return coords
}
