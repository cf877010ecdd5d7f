package exporter

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lintang-b-s/biketrips/pkg/datastructure"
	"github.com/lintang-b-s/biketrips/pkg/geo"
	"github.com/lintang-b-s/biketrips/pkg/util"
)

const TimestampLayout = "2006-01-02T15:04:05.999999999Z07:00"

// Batch is everything produced for one city and one day.
type Batch struct {
	RunID      string
	CityID     int
	Day        time.Time
	CityCenter geo.Coordinate
	Routes     []datastructure.TimestampedRoute
}

func (b Batch) DayString() string {
	return b.Day.Format(time.DateOnly)
}

type Exporter interface {
	// Export writes batch and returns the path of the written file.
	Export(ctx context.Context, batch Batch) (string, error)
	Name() string
}

// New returns the exporters for formats ("csv", "json"). folder is created when missing.
func New(folder string, formats []string) ([]Exporter, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("create export folder %s: %w", folder, err)
	}

	exporters := make([]Exporter, 0, len(formats))
	for _, f := range formats {
		switch strings.ToLower(f) {
		case "csv":
			exporters = append(exporters, NewCSVExporter(folder))
		case "json":
			exporters = append(exporters, NewJSONExporter(folder))
		default:
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "unknown export format %q", f)
		}
	}
	return exporters, nil
}

// tripRecord is the flat per-trip row shared by every output format. Field names follow the
// columns the playback map reads.
type tripRecord struct {
	BikeNumber     string  `json:"bike_number"`
	StartLatitude  float64 `json:"start_latitude"`
	StartLongitude float64 `json:"start_longitude"`
	StartTime      string  `json:"start_time"`
	EndLatitude    float64 `json:"end_latitude"`
	EndLongitude   float64 `json:"end_longitude"`
	EndTime        string  `json:"end_time"`
	Duration       float64 `json:"duration"` // seconds
	Date           string  `json:"date"`
	Distance       float64 `json:"distance"` // route length in meters
	Segments       [][]any `json:"segments"`
	Polyline       string  `json:"polyline"`
}

func newTripRecord(r datastructure.TimestampedRoute) tripRecord {
	trip := r.GetTrip()
	start, end := trip.GetStart(), trip.GetEnd()

	segments := make([][]any, 0, len(r.GetNodes()))
	for _, n := range r.GetNodes() {
		c := n.GetCoordinate()
		segments = append(segments, []any{c.GetLat(), c.GetLon(), n.GetTimestamp().Format(TimestampLayout)})
	}

	return tripRecord{
		BikeNumber:     r.GetVehicleID(),
		StartLatitude:  start.GetLat(),
		StartLongitude: start.GetLon(),
		StartTime:      r.GetStartTime().Format(TimestampLayout),
		EndLatitude:    end.GetLat(),
		EndLongitude:   end.GetLon(),
		EndTime:        r.GetEndTime().Format(TimestampLayout),
		Duration:       r.GetDurationSeconds(),
		Date:           r.GetStartTime().Format(time.DateOnly),
		Distance:       util.RoundFloat(r.GetPathLength(), 3),
		Segments:       segments,
		Polyline:       geo.PolylineFromCoords(r.GetCoordinates()),
	}
}

func fileName(cityID int, day, ext string) string {
	return fmt.Sprintf("%d_trips_%s.%s", cityID, day, ext)
}
