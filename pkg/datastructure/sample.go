package datastructure

import (
	"time"

	"github.com/lintang-b-s/biketrips/pkg/geo"
)

// PositionSample one observation of a vehicle. Created by the sample store, read-only afterwards.
type PositionSample struct {
	vehicleID  string
	lat        float64
	lon        float64
	observedAt time.Time
	cityID     int
}

func NewPositionSample(vehicleID string, lat, lon float64, observedAt time.Time, cityID int) PositionSample {
	return PositionSample{
		vehicleID:  vehicleID,
		lat:        lat,
		lon:        lon,
		observedAt: observedAt,
		cityID:     cityID,
	}
}

func (s PositionSample) GetVehicleID() string {
	return s.vehicleID
}

func (s PositionSample) GetLat() float64 {
	return s.lat
}

func (s PositionSample) GetLon() float64 {
	return s.lon
}

func (s PositionSample) GetCoordinate() geo.Coordinate {
	return geo.NewCoordinate(s.lat, s.lon)
}

func (s PositionSample) GetObservedAt() time.Time {
	return s.observedAt
}

func (s PositionSample) GetCityID() int {
	return s.cityID
}

// SampleLess orders samples by (vehicle id, observed at).
func SampleLess(a, b PositionSample) bool {
	if a.vehicleID != b.vehicleID {
		return a.vehicleID < b.vehicleID
	}
	return a.observedAt.Before(b.observedAt)
}
