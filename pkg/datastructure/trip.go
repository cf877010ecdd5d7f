package datastructure

import (
	"time"

	"github.com/lintang-b-s/biketrips/pkg/geo"
)

// CandidateTrip two consecutive samples of one vehicle at different positions.
type CandidateTrip struct {
	vehicleID string
	start     geo.Coordinate
	startTime time.Time
	end       geo.Coordinate
	endTime   time.Time
}

func NewCandidateTrip(vehicleID string, start geo.Coordinate, startTime time.Time,
	end geo.Coordinate, endTime time.Time) CandidateTrip {
	return CandidateTrip{
		vehicleID: vehicleID,
		start:     start,
		startTime: startTime,
		end:       end,
		endTime:   endTime,
	}
}

// NewCandidateTripFromSamples pairs a sample with its successor.
func NewCandidateTripFromSamples(from, to PositionSample) CandidateTrip {
	return NewCandidateTrip(from.vehicleID, from.GetCoordinate(), from.observedAt,
		to.GetCoordinate(), to.observedAt)
}

func (t CandidateTrip) GetVehicleID() string {
	return t.vehicleID
}

func (t CandidateTrip) GetStart() geo.Coordinate {
	return t.start
}

func (t CandidateTrip) GetEnd() geo.Coordinate {
	return t.end
}

func (t CandidateTrip) GetStartTime() time.Time {
	return t.startTime
}

func (t CandidateTrip) GetEndTime() time.Time {
	return t.endTime
}

func (t CandidateTrip) GetDuration() time.Duration {
	return t.endTime.Sub(t.startTime)
}

func (t CandidateTrip) GetDurationSeconds() float64 {
	return t.GetDuration().Seconds()
}

// ValidatedTrip a candidate trip that survived noise filtering.
type ValidatedTrip struct {
	CandidateTrip
}

func NewValidatedTrip(c CandidateTrip) ValidatedTrip {
	return ValidatedTrip{CandidateTrip: c}
}

// TripLess orders trips by (vehicle id, start time).
func TripLess(a, b CandidateTrip) bool {
	if a.vehicleID != b.vehicleID {
		return a.vehicleID < b.vehicleID
	}
	return a.startTime.Before(b.startTime)
}
