package pipeline

import (
	"fmt"
	"time"
)

// BatchError is a batch-fatal failure of one city/day run.
type BatchError struct {
	CityID int
	Day    time.Time
	Stage  string
	Err    error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch for city %d on %s failed while %s: %v", e.CityID, e.Day.Format(time.DateOnly),
		e.Stage, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

func newBatchError(cityID int, day time.Time, stage string, err error) *BatchError {
	return &BatchError{CityID: cityID, Day: day, Stage: stage, Err: err}
}
