package exporter

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/lintang-b-s/biketrips/pkg/datastructure"
	"github.com/lintang-b-s/biketrips/pkg/geo"
	"github.com/lintang-b-s/biketrips/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 17, 8, 0, 0, 0, time.UTC)

func testBatch() Batch {
	start, mid, end := geo.NewCoordinate(50.0, 8.0), geo.NewCoordinate(50.005, 8.004), geo.NewCoordinate(50.01, 8.01)
	trip := datastructure.NewValidatedTrip(datastructure.NewCandidateTrip("B1", start, t0, end, t0.Add(300*time.Second)))
	route := datastructure.NewTimestampedRoute(trip, 1380.12345, []datastructure.TimestampedNode{
		datastructure.NewTimestampedNode(start, t0),
		datastructure.NewTimestampedNode(mid, t0.Add(150*time.Second)),
		datastructure.NewTimestampedNode(end, t0.Add(300*time.Second)),
	})
	return Batch{
		RunID:      "run-1",
		CityID:     467,
		Day:        t0,
		CityCenter: geo.NewCoordinate(50.11, 8.68),
		Routes:     []datastructure.TimestampedRoute{route},
	}
}

func TestCSVExporter(t *testing.T) {
	dir := t.TempDir()
	path, err := NewCSVExporter(dir).Export(context.Background(), testBatch())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "467_trips_2024-05-17.csv.gz"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	rows, err := csv.NewReader(gz).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// the playback map reads rows by these column names
	assert.Equal(t, []string{
		"bike_number", "start_latitude", "start_longitude", "start_time",
		"end_latitude", "end_longitude", "end_time", "duration", "date", "distance",
		"segments", "polyline",
	}, rows[0])

	row := make(map[string]string, len(rows[0]))
	for i, col := range rows[0] {
		row[col] = rows[1][i]
	}
	assert.Equal(t, "B1", row["bike_number"])
	assert.Equal(t, "50", row["start_latitude"])
	assert.Equal(t, "2024-05-17T08:00:00Z", row["start_time"])
	assert.Equal(t, "2024-05-17T08:05:00Z", row["end_time"])
	assert.Equal(t, "300", row["duration"])
	assert.Equal(t, "2024-05-17", row["date"])
	assert.Equal(t, "1380.123", row["distance"])
	assert.NotEmpty(t, row["polyline"])

	var segments [][]any
	require.NoError(t, json.Unmarshal([]byte(row["segments"]), &segments))
	require.Len(t, segments, 3)
	assert.Equal(t, []any{50.005, 8.004, "2024-05-17T08:02:30Z"}, segments[1])

	_, err = os.Stat(path + ".tmp")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestJSONExporter(t *testing.T) {
	dir := t.TempDir()
	path, err := NewJSONExporter(dir).Export(context.Background(), testBatch())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "467_trips_2024-05-17.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		CityInfo struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"city_info"`
		Trips []struct {
			BikeNumber string  `json:"bike_number"`
			Duration   float64 `json:"duration"`
			Distance   float64 `json:"distance"`
			Segments   [][]any `json:"segments"`
		} `json:"trips"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 50.11, doc.CityInfo.Lat)
	assert.Equal(t, 8.68, doc.CityInfo.Lng)
	require.Len(t, doc.Trips, 1)
	assert.Equal(t, "B1", doc.Trips[0].BikeNumber)
	assert.Equal(t, 300.0, doc.Trips[0].Duration)
	assert.Equal(t, 1380.123, doc.Trips[0].Distance)
	assert.Equal(t, "2024-05-17T08:05:00Z", doc.Trips[0].Segments[2][2])
}

func TestExportEmptyBatch(t *testing.T) {
	batch := testBatch()
	batch.Routes = nil

	exporters, err := New(filepath.Join(t.TempDir(), "nested", "out"), []string{"csv", "json"})
	require.NoError(t, err)
	require.Len(t, exporters, 2)

	for _, e := range exporters {
		t.Run(e.Name(), func(t *testing.T) {
			path, err := e.Export(context.Background(), batch)
			require.NoError(t, err)
			_, err = os.Stat(path)
			assert.NoError(t, err)
		})
	}
}

func TestNewUnknownFormat(t *testing.T) {
	_, err := New(t.TempDir(), []string{"parquet"})
	assert.True(t, errors.Is(err, util.ErrBadParamInput))
}
