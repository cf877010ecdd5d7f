package exporter

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/gzip"
)

var csvHeader = []string{
	"bike_number", "start_latitude", "start_longitude", "start_time",
	"end_latitude", "end_longitude", "end_time", "duration", "date", "distance",
	"segments", "polyline",
}

// CSVExporter writes {city}_trips_{date}.csv.gz, one row per trip. The segments column holds
// the JSON array [[lat, lon, timestamp], ...].
type CSVExporter struct {
	folder string
}

func NewCSVExporter(folder string) *CSVExporter {
	return &CSVExporter{folder: folder}
}

func (ce *CSVExporter) Name() string {
	return "csv"
}

func (ce *CSVExporter) Export(ctx context.Context, batch Batch) (string, error) {
	path := filepath.Join(ce.folder, fileName(batch.CityID, batch.DayString(), "csv.gz"))
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if err := ce.write(ctx, f, batch); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return path, os.Rename(tmp, path)
}

func (ce *CSVExporter) write(ctx context.Context, f *os.File, batch Batch) error {
	gz := gzip.NewWriter(f)
	w := csv.NewWriter(gz)

	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for i, r := range batch.Routes {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rec := newTripRecord(r)
		segments, err := json.Marshal(rec.Segments)
		if err != nil {
			return fmt.Errorf("encode segments of vehicle %s: %w", rec.BikeNumber, err)
		}
		row := []string{
			rec.BikeNumber,
			formatFloat(rec.StartLatitude),
			formatFloat(rec.StartLongitude),
			rec.StartTime,
			formatFloat(rec.EndLatitude),
			formatFloat(rec.EndLongitude),
			rec.EndTime,
			formatFloat(rec.Duration),
			rec.Date,
			formatFloat(rec.Distance),
			string(segments),
			rec.Polyline,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return gz.Close()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
