package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateGeodesicDistance(t *testing.T) {
	testCases := []struct {
		name                   string
		latOne, lonOne         float64
		latTwo, lonTwo         float64
		wantMeters, toleranceM float64
	}{
		{
			name:   "same point",
			latOne: 50.0, lonOne: 8.0, latTwo: 50.0, lonTwo: 8.0,
			wantMeters: 0, toleranceM: 0,
		},
		{
			name:   "one degree of latitude at the equator",
			latOne: 0, lonOne: 0, latTwo: 1, lonTwo: 0,
			wantMeters: 110574.389, toleranceM: 1,
		},
		{
			name:   "one degree of latitude near the pole",
			latOne: 89, lonOne: 0, latTwo: 90, lonTwo: 0,
			wantMeters: 111693.9, toleranceM: 1,
		},
		{
			name:   "flinders peak to buninyong",
			latOne: -37.95103342, lonOne: 144.42486789, latTwo: -37.65282114, lonTwo: 143.92649554,
			wantMeters: 54972.271, toleranceM: 0.5,
		},
		{
			name:   "nearly antipodal points",
			latOne: 0, lonOne: 0, latTwo: 0.5, lonTwo: 179.7,
			wantMeters: 19970000, toleranceM: 40000,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateGeodesicDistance(tt.latOne, tt.lonOne, tt.latTwo, tt.lonTwo)
			assert.InDelta(t, tt.wantMeters, got, tt.toleranceM)
		})
	}
}

func TestGeodesicCloseToHaversineForShortDistances(t *testing.T) {
	geodesic := CalculateGeodesicDistance(50.0, 8.0, 50.01, 8.01)
	haversine := CalculateHaversineDistance(50.0, 8.0, 50.01, 8.01) * 1000

	assert.Greater(t, geodesic, 1000.0)
	assert.InEpsilon(t, haversine, geodesic, 0.005)
}

func TestGeodesicDistanceIsSymmetric(t *testing.T) {
	ab := CalculateGeodesicDistance(52.52, 13.405, 52.5205, 13.4061)
	ba := CalculateGeodesicDistance(52.5205, 13.4061, 52.52, 13.405)
	assert.InDelta(t, ab, ba, 1e-6)
}

func TestGetDestinationPoint(t *testing.T) {
	lat, lon := GetDestinationPoint(50.0, 8.0, 90, 2.0)
	assert.InDelta(t, 2.0, CalculateHaversineDistance(50.0, 8.0, lat, lon), 1e-6)
	assert.Greater(t, lon, 8.0)
}

func TestCityBoundary(t *testing.T) {
	boundary := NewCityBoundary(50.1109, 8.6821, 10000)

	insideLat, insideLon := GetDestinationPoint(50.1109, 8.6821, 30, 5)
	outsideLat, outsideLon := GetDestinationPoint(50.1109, 8.6821, 210, 15)

	assert.True(t, boundary.Contains(50.1109, 8.6821))
	assert.True(t, boundary.Contains(insideLat, insideLon))
	assert.False(t, boundary.Contains(outsideLat, outsideLon))
	assert.Equal(t, 10000.0, boundary.GetRadiusMeters())
}

func TestPolylineFromCoords(t *testing.T) {
	coords := []Coordinate{
		NewCoordinate(38.5, -120.2),
		NewCoordinate(40.7, -120.95),
		NewCoordinate(43.252, -126.453),
	}
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", PolylineFromCoords(coords))
}
