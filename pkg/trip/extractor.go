package trip

import (
	"slices"

	"github.com/lintang-b-s/biketrips/pkg/datastructure"
	"go.uber.org/zap"
)

// MovementExtractor pairs every sample of a vehicle with its immediate successor and keeps
// the pairs whose positions differ.
type MovementExtractor struct {
	logger *zap.Logger
}

func NewMovementExtractor(logger *zap.Logger) *MovementExtractor {
	return &MovementExtractor{
		logger: logger,
	}
}

// ExtractCandidateTrips expects samples ordered by (vehicle id, observed at). Unordered input is
// sorted on a copy first. Pairs are not carried over: after an unchanged position the walk
// continues from the successor sample.
func (me *MovementExtractor) ExtractCandidateTrips(samples []datastructure.PositionSample) []datastructure.CandidateTrip {
	if !isSampleOrdered(samples) {
		me.logger.Warn("samples are not ordered by (vehicle_id, observed_at), sorting a copy",
			zap.Int("samples", len(samples)))
		sorted := slices.Clone(samples)
		slices.SortStableFunc(sorted, compareSamples)
		samples = sorted
	}

	trips := make([]datastructure.CandidateTrip, 0, len(samples)/4)
	for i := 0; i+1 < len(samples); i++ {
		from, to := samples[i], samples[i+1]
		if from.GetVehicleID() != to.GetVehicleID() {
			// last sample of a vehicle never starts a trip
			continue
		}
		if from.GetCoordinate().Equal(to.GetCoordinate()) {
			continue
		}
		if !from.GetObservedAt().Before(to.GetObservedAt()) {
			me.logger.Debug("skipping sample pair without positive duration",
				zap.String("vehicle_id", from.GetVehicleID()),
				zap.Time("observed_at", from.GetObservedAt()))
			continue
		}

		trips = append(trips, datastructure.NewCandidateTripFromSamples(from, to))
	}
	return trips
}

func isSampleOrdered(samples []datastructure.PositionSample) bool {
	return slices.IsSortedFunc(samples, compareSamples)
}

func compareSamples(a, b datastructure.PositionSample) int {
	if datastructure.SampleLess(a, b) {
		return -1
	}
	if datastructure.SampleLess(b, a) {
		return 1
	}
	return 0
}
