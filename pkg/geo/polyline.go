package geo

import "github.com/twpayne/go-polyline"

// PolylineFromCoords encodes coords with the google polyline algorithm (precision 5).
func PolylineFromCoords(coords []Coordinate) string {
	c := make([][]float64, 0, len(coords))
	for _, coord := range coords {
		c = append(c, []float64{coord.Lat, coord.Lon})
	}
	return string(polyline.EncodeCoords(c))
}
