package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/lintang-b-s/biketrips/pkg/datastructure"
	"github.com/lintang-b-s/biketrips/pkg/geo"
	"go.uber.org/zap"
)

// longer lines are counted as malformed samples
const maxLineBytes = 1 << 20

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// fileRow is one JSON line of a snapshot file, one bikes row per line.
type fileRow struct {
	BikeNumber  *json.RawMessage `json:"bike_number"`
	Latitude    *float64         `json:"latitude"`
	Longitude   *float64         `json:"longitude"`
	LastUpdated *string          `json:"last_updated"`
	CityID      *int             `json:"city_id"`
}

// FileStore serves samples from a JSON-lines snapshot export (optionally gzip compressed)
// for offline runs. The city center comes from configuration.
type FileStore struct {
	path      string
	centers   map[int]geo.Coordinate
	validator *SampleValidator
	logger    *zap.Logger
}

func NewFileStore(path string, centers map[int]geo.Coordinate, logger *zap.Logger) *FileStore {
	return &FileStore{
		path:      path,
		centers:   centers,
		validator: NewSampleValidator(logger),
		logger:    logger,
	}
}

func (fs *FileStore) LoadSamples(ctx context.Context, cityID int, day time.Time) (SampleBatch, error) {
	f, err := os.Open(fs.path)
	if err != nil {
		return SampleBatch{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(fs.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return SampleBatch{}, fmt.Errorf("open gzip %s: %w", fs.path, err)
		}
		defer gz.Close()
		r = gz
	}

	batch, err := fs.readSamples(ctx, r, cityID, day)
	if err != nil {
		return SampleBatch{}, err
	}
	fs.logger.Sugar().Infof("loaded %d samples of city %d on %s from %s (%d malformed)", len(batch.Samples),
		cityID, day.Format(time.DateOnly), fs.path, batch.Malformed)
	return batch, nil
}

func (fs *FileStore) readSamples(ctx context.Context, r io.Reader, cityID int, day time.Time) (SampleBatch, error) {
	from, to := DayWindow(day)
	batch := SampleBatch{Samples: make([]datastructure.PositionSample, 0, 4096)}

	br := bufio.NewReaderSize(r, maxLineBytes)
	lineNo := 0
	for {
		raw, tooLong, err := readLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return SampleBatch{}, fmt.Errorf("read %s: %w", fs.path, err)
		}
		lineNo++
		if lineNo%100000 == 0 {
			if err := ctx.Err(); err != nil {
				return SampleBatch{}, err
			}
		}
		if tooLong {
			fs.validator.Collect(&batch, RawSample{})
			continue
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		var row fileRow
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			// unparseable line counts as a malformed sample
			fs.validator.Collect(&batch, RawSample{})
			continue
		}
		if row.CityID != nil && *row.CityID != cityID {
			continue
		}
		sample := row.toRaw()
		if sample.LastUpdated != nil && (sample.LastUpdated.Before(from) || !sample.LastUpdated.Before(to)) {
			continue
		}
		fs.validator.Collect(&batch, sample)
	}

	slices.SortStableFunc(batch.Samples, func(a, b datastructure.PositionSample) int {
		if datastructure.SampleLess(a, b) {
			return -1
		}
		if datastructure.SampleLess(b, a) {
			return 1
		}
		return 0
	})
	return batch, nil
}

// readLine returns the next line without its newline. A line longer than the reader buffer is
// skipped to its end and reported as tooLong. io.EOF is returned only when no line is left.
func readLine(br *bufio.Reader) (string, bool, error) {
	line, err := br.ReadSlice('\n')
	if !errors.Is(err, bufio.ErrBufferFull) {
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			return "", false, err
		}
		return strings.TrimRight(string(line), "\r\n"), false, nil
	}

	for errors.Is(err, bufio.ErrBufferFull) {
		_, err = br.ReadSlice('\n')
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	return "", true, nil
}

func (fs *FileStore) CityCenter(ctx context.Context, cityID int) (geo.Coordinate, error) {
	c, ok := fs.centers[cityID]
	if !ok {
		return geo.Coordinate{}, fmt.Errorf("city %d: %w", cityID, ErrCityNotFound)
	}
	return c, nil
}

func (fs *FileStore) Close() error {
	return nil
}

func (row fileRow) toRaw() RawSample {
	raw := RawSample{
		Latitude:  row.Latitude,
		Longitude: row.Longitude,
		CityID:    row.CityID,
	}
	if row.BikeNumber != nil {
		// bike numbers are exported both as strings and as numbers
		var s string
		if err := json.Unmarshal(*row.BikeNumber, &s); err != nil {
			s = strings.TrimSpace(string(*row.BikeNumber))
		}
		if s != "" && s != "null" {
			raw.BikeNumber = &s
		}
	}
	if row.LastUpdated != nil {
		if ts, err := parseTimestamp(*row.LastUpdated); err == nil {
			raw.LastUpdated = &ts
		}
	}
	return raw
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, errors.New("unknown timestamp layout: " + s)
}
