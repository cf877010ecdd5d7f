package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/biketrips/pkg/datastructure"
	"github.com/lintang-b-s/biketrips/pkg/geo"
	"github.com/lintang-b-s/biketrips/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SampleStore returns every position sample of one city and one day, ordered by
// (vehicle id, observed at).
type SampleStore interface {
	LoadSamples(ctx context.Context, cityID int, day time.Time) (SampleBatch, error)
	CityCenter(ctx context.Context, cityID int) (geo.Coordinate, error)
	Close() error
}

type SampleBatch struct {
	Samples   []datastructure.PositionSample
	Read      int
	Malformed int
}

// RawSample is a row of the bikes table before validation. Nil fields were missing in the source.
type RawSample struct {
	BikeNumber  *string    `json:"bike_number" validate:"required,min=1"`
	Latitude    *float64   `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude   *float64   `json:"longitude" validate:"required,min=-180,max=180"`
	LastUpdated *time.Time `json:"last_updated" validate:"required"`
	CityID      *int       `json:"city_id" validate:"required"`
}

// SampleValidator turns raw rows into position samples.
type SampleValidator struct {
	validate      *validator.Validate
	trans         ut.Translator
	logger        *zap.Logger
	warnSometimes rate.Sometimes
}

func NewSampleValidator(logger *zap.Logger) *SampleValidator {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	return &SampleValidator{
		validate:      validate,
		trans:         trans,
		logger:        logger,
		warnSometimes: rate.Sometimes{First: 10, Interval: 10 * time.Second},
	}
}

// ToPositionSample returns a util.ErrMalformedInput error when a mandatory field is missing or out of range.
func (sv *SampleValidator) ToPositionSample(raw RawSample) (datastructure.PositionSample, error) {
	if err := sv.validate.Struct(raw); err != nil {
		return datastructure.PositionSample{}, util.WrapErrorf(nil, util.ErrMalformedInput,
			"malformed sample: %s", strings.Join(translateError(err, sv.trans), "; "))
	}
	return datastructure.NewPositionSample(*raw.BikeNumber, *raw.Latitude, *raw.Longitude,
		raw.LastUpdated.UTC(), *raw.CityID), nil
}

// Collect validates raw and appends the valid samples to batch. Malformed samples are dropped with a warning.
func (sv *SampleValidator) Collect(batch *SampleBatch, raw RawSample) {
	batch.Read++
	s, err := sv.ToPositionSample(raw)
	if err != nil {
		batch.Malformed++
		sv.warnSometimes.Do(func() {
			sv.logger.Warn("dropping sample", zap.Error(err), zap.Int("malformed_so_far", batch.Malformed))
		})
		return
	}
	batch.Samples = append(batch.Samples, s)
}

func translateError(err error, trans ut.Translator) []string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		msgs = append(msgs, e.Translate(trans))
	}
	return msgs
}

// DayWindow returns [day 00:00, next day 00:00) in UTC.
func DayWindow(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
