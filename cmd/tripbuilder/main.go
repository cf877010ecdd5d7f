package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lintang-b-s/biketrips/pkg/config"
	"github.com/lintang-b-s/biketrips/pkg/exporter"
	"github.com/lintang-b-s/biketrips/pkg/geo"
	"github.com/lintang-b-s/biketrips/pkg/logger"
	"github.com/lintang-b-s/biketrips/pkg/metrics"
	"github.com/lintang-b-s/biketrips/pkg/pipeline"
	"github.com/lintang-b-s/biketrips/pkg/store"
	"github.com/lintang-b-s/biketrips/pkg/trip"
	"go.uber.org/zap"
)

var (
	cityID       = flag.Int("city-id", 0, "city_id of the bikes to process")
	date         = flag.String("date", "", "day to process, YYYY-MM-DD")
	configFile   = flag.String("config", "", "config file, default ./data/config.yaml")
	exportFolder = flag.String("export-folder", "", "overrides export.folder")
	samplesFile  = flag.String("samples", "", "JSON-lines snapshot file, switches to the file store")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if *cityID <= 0 {
		return fmt.Errorf("--city-id is required")
	}
	day, err := time.Parse(time.DateOnly, *date)
	if err != nil {
		return fmt.Errorf("--date must be YYYY-MM-DD, got %q", *date)
	}

	cfg, err := config.Load(*configFile, func(cfg *config.Config) {
		if *exportFolder != "" {
			cfg.Export.Folder = *exportFolder
		}
		if *samplesFile != "" {
			cfg.Store.Driver = "file"
			cfg.Store.SamplesFile = *samplesFile
		}
	})
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sampleStore, err := openStore(ctx, cfg, *cityID, log)
	if err != nil {
		return fmt.Errorf("batch for city %d on %s failed while opening sample store: %w", *cityID, *date, err)
	}
	defer sampleStore.Close()

	mode, err := trip.ParseInterpolationMode(cfg.Interpolation.Mode)
	if err != nil {
		return err
	}
	exporters, err := exporter.New(cfg.Export.Folder, cfg.Export.Formats)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	loader := pipeline.NewEngineLoader(cfg.Graph.OsmFile, cfg.GraphCacheFile, cfg.Graph.RadiusMeters,
		cfg.Graph.SnapRadiusMeters, cfg.Graph.SnapCacheSize, log)

	p := pipeline.NewPipeline(sampleStore, loader,
		trip.NewNoiseFilter(cfg.Filter.MaxJitterDuration, cfg.Filter.MinDisplacementMeters),
		trip.NewInterpolator(mode), exporters, collector, cfg.Workers, log)
	if cfg.City.HasCenter {
		p.SetCityCenter(geo.NewCoordinate(cfg.City.CenterLat, cfg.City.CenterLon))
	}

	summary, runErr := p.Run(ctx, *cityID, day)
	if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		log.Warn("failed to write metrics textfile", zap.Error(err))
	}
	if runErr != nil {
		log.Error("batch failed", zap.Error(runErr))
		return runErr
	}

	fmt.Printf("city %d on %s: %d samples (%d malformed), %d candidate trips, %d jitter, %d validated, %d without route, %d exported\n",
		summary.CityID, *date, summary.SamplesRead, summary.Malformed, summary.Candidates, summary.JitterDropped,
		summary.Validated, summary.NoRouteSkipped, summary.Exported)
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, cityID int, log *zap.Logger) (store.SampleStore, error) {
	switch cfg.Store.Driver {
	case "file":
		centers := map[int]geo.Coordinate{}
		if cfg.City.HasCenter {
			centers[cityID] = geo.NewCoordinate(cfg.City.CenterLat, cfg.City.CenterLon)
		}
		return store.NewFileStore(cfg.Store.SamplesFile, centers, log), nil
	default:
		return store.OpenPostgres(ctx, cfg.Store.DSN, log)
	}
}
