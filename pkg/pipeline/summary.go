package pipeline

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// Summary counts what happened to the samples and trips of one batch.
type Summary struct {
	RunID          string
	CityID         int
	Day            time.Time
	SamplesRead    int
	Malformed      int
	Candidates     int
	JitterDropped  int
	Validated      int
	NoRouteSkipped int
	Exported       int
	Files          []string
	Duration       time.Duration
}

func (s Summary) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("run_id", s.RunID)
	enc.AddInt("city_id", s.CityID)
	enc.AddString("date", s.Day.Format(time.DateOnly))
	enc.AddInt("samples_read", s.SamplesRead)
	enc.AddInt("malformed_dropped", s.Malformed)
	enc.AddInt("candidate_trips", s.Candidates)
	enc.AddInt("jitter_dropped", s.JitterDropped)
	enc.AddInt("validated_trips", s.Validated)
	enc.AddInt("no_route_skipped", s.NoRouteSkipped)
	enc.AddInt("exported_trips", s.Exported)
	enc.AddDuration("duration", s.Duration)
	return nil
}
