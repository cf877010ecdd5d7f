package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lintang-b-s/biketrips/pkg/datastructure"
	"github.com/lintang-b-s/biketrips/pkg/geo"
	"go.uber.org/zap"
)

const (
	querySamples = `
SELECT bike_number, latitude, longitude, last_updated, city_id
FROM public.bikes
WHERE city_id = $1
  AND last_updated >= $2
  AND last_updated < $3
ORDER BY bike_number, last_updated`

	queryCityCenter = `SELECT latitude, longitude FROM public.cities WHERE city_id = $1`
)

// ErrCityNotFound city id missing from public.cities.
var ErrCityNotFound = errors.New("city not found")

type PostgresStore struct {
	db        *sql.DB
	validator *SampleValidator
	logger    *zap.Logger
}

func OpenPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewPostgresStore(db, logger), nil
}

func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{
		db:        db,
		validator: NewSampleValidator(logger),
		logger:    logger,
	}
}

func (ps *PostgresStore) LoadSamples(ctx context.Context, cityID int, day time.Time) (SampleBatch, error) {
	from, to := DayWindow(day)
	rows, err := ps.db.QueryContext(ctx, querySamples, cityID, from, to)
	if err != nil {
		return SampleBatch{}, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	batch := SampleBatch{Samples: make([]datastructure.PositionSample, 0, 4096)}
	for rows.Next() {
		var (
			bikeNumber  sql.NullString
			lat, lon    sql.NullFloat64
			lastUpdated sql.NullTime
			city        sql.NullInt64
		)
		if err := rows.Scan(&bikeNumber, &lat, &lon, &lastUpdated, &city); err != nil {
			return SampleBatch{}, fmt.Errorf("scan sample: %w", err)
		}
		ps.validator.Collect(&batch, rawFromNullable(bikeNumber, lat, lon, lastUpdated, city))
	}
	if err := rows.Err(); err != nil {
		return SampleBatch{}, fmt.Errorf("read samples: %w", err)
	}

	ps.logger.Sugar().Infof("loaded %d samples of city %d on %s (%d malformed)", len(batch.Samples), cityID,
		from.Format(time.DateOnly), batch.Malformed)
	return batch, nil
}

func (ps *PostgresStore) CityCenter(ctx context.Context, cityID int) (geo.Coordinate, error) {
	var lat, lon float64
	err := ps.db.QueryRowContext(ctx, queryCityCenter, cityID).Scan(&lat, &lon)
	if errors.Is(err, sql.ErrNoRows) {
		return geo.Coordinate{}, fmt.Errorf("city %d: %w", cityID, ErrCityNotFound)
	}
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("query city center: %w", err)
	}
	return geo.NewCoordinate(lat, lon), nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

func rawFromNullable(bikeNumber sql.NullString, lat, lon sql.NullFloat64, lastUpdated sql.NullTime,
	city sql.NullInt64) RawSample {
	var raw RawSample
	if bikeNumber.Valid {
		raw.BikeNumber = &bikeNumber.String
	}
	if lat.Valid {
		raw.Latitude = &lat.Float64
	}
	if lon.Valid {
		raw.Longitude = &lon.Float64
	}
	if lastUpdated.Valid {
		raw.LastUpdated = &lastUpdated.Time
	}
	if city.Valid {
		c := int(city.Int64)
		raw.CityID = &c
	}
	return raw
}
