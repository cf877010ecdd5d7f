package geo

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// CityBoundary is the spherical cap of radius radiusMeters around a city center.
// The road graph of a city is truncated to it.
type CityBoundary struct {
	center       Coordinate
	radiusMeters float64
	cap          s2.Cap
}

func NewCityBoundary(centerLat, centerLon, radiusMeters float64) CityBoundary {
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(centerLat, centerLon))
	return CityBoundary{
		center:       NewCoordinate(centerLat, centerLon),
		radiusMeters: radiusMeters,
		cap:          s2.CapFromCenterAngle(center, s1.Angle(radiusMeters/earthRadiusMeters)),
	}
}

func (cb CityBoundary) Contains(lat, lon float64) bool {
	return cb.cap.ContainsPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon)))
}

func (cb CityBoundary) GetCenter() Coordinate {
	return cb.center
}

func (cb CityBoundary) GetRadiusMeters() float64 {
	return cb.radiusMeters
}

// Equal compares center and radius, up to float formatting noise.
func (cb CityBoundary) Equal(o CityBoundary) bool {
	const eps = 1e-9
	return math.Abs(cb.center.Lat-o.center.Lat) < eps &&
		math.Abs(cb.center.Lon-o.center.Lon) < eps &&
		math.Abs(cb.radiusMeters-o.radiusMeters) < 1e-6
}
