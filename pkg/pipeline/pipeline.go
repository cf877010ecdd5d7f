package pipeline

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lintang-b-s/biketrips/pkg/concurrent"
	"github.com/lintang-b-s/biketrips/pkg/datastructure"
	"github.com/lintang-b-s/biketrips/pkg/exporter"
	"github.com/lintang-b-s/biketrips/pkg/geo"
	"github.com/lintang-b-s/biketrips/pkg/metrics"
	"github.com/lintang-b-s/biketrips/pkg/resolver"
	"github.com/lintang-b-s/biketrips/pkg/store"
	"github.com/lintang-b-s/biketrips/pkg/trip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Pipeline runs one city/day batch: extract candidate trips from the samples, drop jitter,
// resolve a route for every trip, interpolate node timestamps and export.
type Pipeline struct {
	store        store.SampleStore
	oracleLoader OracleLoader
	extractor    *trip.MovementExtractor
	filter       *trip.NoiseFilter
	interpolator *trip.Interpolator
	exporters    []exporter.Exporter
	metrics      *metrics.Collector
	workers      int
	cityCenter   *geo.Coordinate
	logger       *zap.Logger
}

func NewPipeline(sampleStore store.SampleStore, oracleLoader OracleLoader, filter *trip.NoiseFilter,
	interpolator *trip.Interpolator, exporters []exporter.Exporter, collector *metrics.Collector, workers int,
	logger *zap.Logger) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	if collector == nil {
		collector = metrics.NewCollector()
	}
	return &Pipeline{
		store:        sampleStore,
		oracleLoader: oracleLoader,
		extractor:    trip.NewMovementExtractor(logger),
		filter:       filter,
		interpolator: interpolator,
		exporters:    exporters,
		metrics:      collector,
		workers:      workers,
		logger:       logger,
	}
}

// SetCityCenter skips the city center lookup of the sample store.
func (p *Pipeline) SetCityCenter(center geo.Coordinate) {
	p.cityCenter = &center
}

type routeJob struct {
	idx  int
	trip datastructure.ValidatedTrip
}

type routeResult struct {
	idx     int
	route   datastructure.TimestampedRoute
	noRoute bool
	skipped bool
	err     error
}

// Run processes the samples of cityID observed on day. Soft failures are counted in the summary,
// hard failures are returned as *BatchError.
func (p *Pipeline) Run(ctx context.Context, cityID int, day time.Time) (Summary, error) {
	startTime := time.Now()
	runID := uuid.NewString()
	log := p.logger.With(zap.String("run_id", runID), zap.Int("city_id", cityID),
		zap.String("date", day.Format(time.DateOnly)))
	summary := Summary{RunID: runID, CityID: cityID, Day: day}

	log.Info("starting batch",
		zap.Duration("max_jitter_duration", p.filter.GetMaxJitterDuration()),
		zap.Float64("min_displacement_meters", p.filter.GetMinDisplacementMeters()))

	var (
		batch    store.SampleBatch
		oracle   resolver.RoutingOracle
		center   geo.Coordinate
		vertices int
	)

	// samples and road graph are independent, the graph usually takes longer
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		batch, err = p.store.LoadSamples(gctx, cityID, day)
		if err != nil {
			return newBatchError(cityID, day, "loading samples", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if p.cityCenter != nil {
			center = *p.cityCenter
		} else {
			center, err = p.store.CityCenter(gctx, cityID)
			if err != nil {
				return newBatchError(cityID, day, "looking up city center", err)
			}
		}
		oracle, vertices, err = p.oracleLoader.LoadOracle(gctx, cityID, center)
		if err != nil {
			return newBatchError(cityID, day, "loading road graph", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return summary, err
	}
	p.metrics.GraphVertices.Set(float64(vertices))

	summary.SamplesRead = batch.Read
	summary.Malformed = batch.Malformed
	p.metrics.SamplesRead.Add(float64(batch.Read))
	p.metrics.SamplesMalformed.Add(float64(batch.Malformed))

	candidates := p.extractor.ExtractCandidateTrips(batch.Samples)
	validated := p.filter.Filter(candidates)
	summary.Candidates = len(candidates)
	summary.Validated = len(validated)
	summary.JitterDropped = len(candidates) - len(validated)
	p.metrics.CandidateTrips.Add(float64(summary.Candidates))
	p.metrics.ValidatedTrips.Add(float64(summary.Validated))
	p.metrics.JitterDropped.Add(float64(summary.JitterDropped))

	log.Sugar().Infof("%d samples, %d candidate trips, %d validated trips", len(batch.Samples),
		summary.Candidates, summary.Validated)

	routes, noRoute, err := p.resolveRoutes(ctx, oracle, validated, log)
	if err != nil {
		return summary, newBatchError(cityID, day, "resolving routes", err)
	}
	summary.NoRouteSkipped = noRoute
	p.metrics.NoRouteSkipped.Add(float64(noRoute))

	out := exporter.Batch{
		RunID:      runID,
		CityID:     cityID,
		Day:        day,
		CityCenter: center,
		Routes:     routes,
	}
	for _, e := range p.exporters {
		path, err := e.Export(ctx, out)
		if err != nil {
			p.metrics.ExportErrors.WithLabelValues(e.Name()).Inc()
			return summary, newBatchError(cityID, day, "exporting "+e.Name(), err)
		}
		summary.Files = append(summary.Files, path)
		log.Info("exported trips", zap.String("format", e.Name()), zap.String("path", path))
	}
	summary.Exported = len(routes)
	p.metrics.ExportedTrips.Add(float64(len(routes)))

	summary.Duration = time.Since(startTime)
	p.metrics.BatchDuration.Observe(summary.Duration.Seconds())
	log.Info("batch finished", zap.Object("summary", summary))
	return summary, nil
}

// resolveRoutes fans the trips out over the worker pool. The first hard failure cancels the
// remaining jobs. Results come back in (vehicle id, start time) order.
func (p *Pipeline) resolveRoutes(ctx context.Context, oracle resolver.RoutingOracle,
	trips []datastructure.ValidatedTrip, log *zap.Logger) ([]datastructure.TimestampedRoute, int, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	rr := resolver.NewRouteResolver(oracle, log)
	noRouteWarn := rate.Sometimes{First: 5, Interval: 5 * time.Second}

	wp := concurrent.NewWorkerPool[routeJob, routeResult](p.workers, len(trips))
	log.Debug("resolving routes", zap.Int("trips", len(trips)), zap.Int("workers", wp.GetNumWorkers()),
		zap.Stringer("interpolation", p.interpolator.GetMode()))
	wp.Start(func(job routeJob) routeResult {
		if ctx.Err() != nil {
			return routeResult{idx: job.idx, skipped: true}
		}

		start := time.Now()
		route, err := rr.Resolve(job.trip)
		p.metrics.ObserveRoute(start)
		if err != nil {
			cancel(err)
			return routeResult{idx: job.idx, err: err}
		}
		if route.IsEmpty() {
			noRouteWarn.Do(func() {
				log.Warn("no route for trip, skipping",
					zap.String("vehicle_id", job.trip.GetVehicleID()),
					zap.Time("start_time", job.trip.GetStartTime()))
			})
			return routeResult{idx: job.idx, noRoute: true}
		}

		timestamped, err := p.interpolator.Interpolate(job.trip, route)
		if err != nil {
			return routeResult{idx: job.idx, noRoute: true}
		}
		return routeResult{idx: job.idx, route: timestamped}
	})

	for i, t := range trips {
		wp.AddJob(routeJob{idx: i, trip: t})
	}
	wp.Close()
	wp.Wait()

	results := make([]routeResult, 0, len(trips))
	noRoute := 0
	for res := range wp.CollectResults() {
		if res.noRoute {
			noRoute++
		}
		results = append(results, res)
	}

	// a hard oracle failure or cancellation of the caller
	if cause := context.Cause(ctx); cause != nil {
		return nil, noRoute, cause
	}

	slices.SortFunc(results, func(a, b routeResult) int {
		return a.idx - b.idx
	})
	routes := make([]datastructure.TimestampedRoute, 0, len(results))
	for _, res := range results {
		if res.noRoute || res.skipped {
			continue
		}
		routes = append(routes, res.route)
	}
	slices.SortStableFunc(routes, func(a, b datastructure.TimestampedRoute) int {
		at, bt := a.GetTrip().CandidateTrip, b.GetTrip().CandidateTrip
		if datastructure.TripLess(at, bt) {
			return -1
		}
		if datastructure.TripLess(bt, at) {
			return 1
		}
		return 0
	})

	if noRoute > 0 {
		log.Sugar().Infof("%d of %d trips skipped without route", noRoute, len(trips))
	}
	return routes, noRoute, nil
}
