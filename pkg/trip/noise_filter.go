package trip

import (
	"time"

	"github.com/lintang-b-s/biketrips/pkg/datastructure"
	"github.com/lintang-b-s/biketrips/pkg/geo"
)

const (
	// just over one 60 s poll interval
	DefaultMaxJitterDuration  = 62 * time.Second
	DefaultMinDisplacementMet = 60.0
)

// NoiseFilter drops GPS jitter: trips that are both short in time and short in space.
// A long dwell is never noise, neither is a short trip with enough displacement.
type NoiseFilter struct {
	maxJitterDuration  time.Duration
	minDisplacementMet float64
}

func NewNoiseFilter(maxJitterDuration time.Duration, minDisplacementMeters float64) *NoiseFilter {
	if maxJitterDuration <= 0 {
		maxJitterDuration = DefaultMaxJitterDuration
	}
	if minDisplacementMeters <= 0 {
		minDisplacementMeters = DefaultMinDisplacementMet
	}
	return &NoiseFilter{
		maxJitterDuration:  maxJitterDuration,
		minDisplacementMet: minDisplacementMeters,
	}
}

func (nf *NoiseFilter) GetMaxJitterDuration() time.Duration {
	return nf.maxJitterDuration
}

func (nf *NoiseFilter) GetMinDisplacementMeters() float64 {
	return nf.minDisplacementMet
}

// Keep reports whether trip is a real movement.
func (nf *NoiseFilter) Keep(trip datastructure.CandidateTrip) bool {
	if trip.GetDurationSeconds() > nf.maxJitterDuration.Seconds() {
		return true
	}
	start, end := trip.GetStart(), trip.GetEnd()
	displacement := geo.CalculateGeodesicDistance(start.GetLat(), start.GetLon(), end.GetLat(), end.GetLon())
	return displacement >= nf.minDisplacementMet
}

// Filter returns the kept trips in input order.
func (nf *NoiseFilter) Filter(trips []datastructure.CandidateTrip) []datastructure.ValidatedTrip {
	validated := make([]datastructure.ValidatedTrip, 0, len(trips))
	for _, t := range trips {
		if nf.Keep(t) {
			validated = append(validated, datastructure.NewValidatedTrip(t))
		}
	}
	return validated
}
