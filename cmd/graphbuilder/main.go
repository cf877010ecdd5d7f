package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/lintang-b-s/biketrips/pkg/config"
	"github.com/lintang-b-s/biketrips/pkg/engine"
	"github.com/lintang-b-s/biketrips/pkg/geo"
	"github.com/lintang-b-s/biketrips/pkg/logger"
	"github.com/lintang-b-s/biketrips/pkg/store"
	"go.uber.org/zap"
)

var (
	cityID     = flag.Int("city-id", 0, "city_id whose road graph is built")
	configFile = flag.String("config", "", "config file, default ./data/config.yaml")
	osmFile    = flag.String("osm", "", "OpenStreetMap PBF extract, overrides graph.osm_file")
	centerLat  = flag.Float64("lat", 0, "city center latitude, skips the cities table lookup")
	centerLon  = flag.Float64("lon", 0, "city center longitude, skips the cities table lookup")
)

// graphbuilder writes the bzip2 road graph cache of one city so batch runs skip PBF parsing.
func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load(*configFile, func(cfg *config.Config) {
		if *osmFile != "" {
			cfg.Graph.OsmFile = *osmFile
		}
		if *centerLat != 0 || *centerLon != 0 {
			// no database needed
			cfg.Store.Driver = "file"
			cfg.Store.SamplesFile = "-"
		}
	})
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}
	if *cityID <= 0 || cfg.Graph.OsmFile == "" {
		log.Fatal("--city-id and an osm file are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	center := geo.NewCoordinate(*centerLat, *centerLon)
	if *centerLat == 0 && *centerLon == 0 {
		if cfg.City.HasCenter {
			center = geo.NewCoordinate(cfg.City.CenterLat, cfg.City.CenterLon)
		} else {
			ps, err := store.OpenPostgres(ctx, cfg.Store.DSN, log)
			if err != nil {
				log.Fatal("failed to open database", zap.Error(err))
			}
			center, err = ps.CityCenter(ctx, *cityID)
			ps.Close()
			if err != nil {
				log.Fatal("failed to look up city center", zap.Int("city_id", *cityID), zap.Error(err))
			}
		}
	}

	cacheFile := cfg.GraphCacheFile(*cityID)
	if err := os.Remove(cacheFile); err != nil && !os.IsNotExist(err) {
		log.Fatal("failed to remove old graph cache", zap.String("path", cacheFile), zap.Error(err))
	}

	boundary := geo.NewCityBoundary(center.GetLat(), center.GetLon(), cfg.Graph.RadiusMeters)
	graph, err := engine.LoadGraph(ctx, cfg.Graph.OsmFile, cacheFile, &boundary, log)
	if err != nil {
		log.Fatal("failed to build road graph", zap.Error(err))
	}

	log.Sugar().Infof("graph of city %d built, cache %s: %d vertices, %d edges", *cityID, cacheFile,
		graph.NumberOfVertices(), graph.NumberOfEdges())
}
