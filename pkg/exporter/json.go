package exporter

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
)

type cityInfo struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type jsonDocument struct {
	RunID    string       `json:"run_id,omitempty"`
	CityID   int          `json:"city_id"`
	Date     string       `json:"date"`
	CityInfo cityInfo     `json:"city_info"`
	Trips    []tripRecord `json:"trips"`
}

// JSONExporter writes {city}_trips_{date}.json for the playback map: the city center and
// every trip with its timestamped segments.
type JSONExporter struct {
	folder string
}

func NewJSONExporter(folder string) *JSONExporter {
	return &JSONExporter{folder: folder}
}

func (je *JSONExporter) Name() string {
	return "json"
}

func (je *JSONExporter) Export(ctx context.Context, batch Batch) (string, error) {
	doc := jsonDocument{
		RunID:    batch.RunID,
		CityID:   batch.CityID,
		Date:     batch.DayString(),
		CityInfo: cityInfo{Lat: batch.CityCenter.GetLat(), Lng: batch.CityCenter.GetLon()},
		Trips:    make([]tripRecord, 0, len(batch.Routes)),
	}
	for _, r := range batch.Routes {
		doc.Trips = append(doc.Trips, newTripRecord(r))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(je.folder, fileName(batch.CityID, batch.DayString(), "json"))
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := bw.Flush(); err != nil {
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
