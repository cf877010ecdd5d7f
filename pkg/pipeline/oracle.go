package pipeline

import (
	"context"

	"github.com/lintang-b-s/biketrips/pkg/engine"
	"github.com/lintang-b-s/biketrips/pkg/geo"
	"github.com/lintang-b-s/biketrips/pkg/resolver"
	"go.uber.org/zap"
)

// OracleLoader builds the routing oracle of a city. Called once per batch.
type OracleLoader interface {
	LoadOracle(ctx context.Context, cityID int, center geo.Coordinate) (resolver.RoutingOracle, int, error)
}

// EngineLoader loads the bike road graph within radiusMeters of the city center.
type EngineLoader struct {
	osmFile          string
	cacheFile        func(cityID int) string
	radiusMeters     float64
	snapRadiusMeters float64
	snapCacheSize    int
	logger           *zap.Logger
}

func NewEngineLoader(osmFile string, cacheFile func(cityID int) string, radiusMeters, snapRadiusMeters float64,
	snapCacheSize int, logger *zap.Logger) *EngineLoader {
	return &EngineLoader{
		osmFile:          osmFile,
		cacheFile:        cacheFile,
		radiusMeters:     radiusMeters,
		snapRadiusMeters: snapRadiusMeters,
		snapCacheSize:    snapCacheSize,
		logger:           logger,
	}
}

// LoadOracle returns the oracle and the number of graph vertices.
func (el *EngineLoader) LoadOracle(ctx context.Context, cityID int, center geo.Coordinate) (resolver.RoutingOracle, int, error) {
	boundary := geo.NewCityBoundary(center.GetLat(), center.GetLon(), el.radiusMeters)

	cacheFile := ""
	if el.cacheFile != nil {
		cacheFile = el.cacheFile(cityID)
	}
	graph, err := engine.LoadGraph(ctx, el.osmFile, cacheFile, &boundary, el.logger)
	if err != nil {
		return nil, 0, err
	}

	e, err := engine.NewEngine(graph, el.snapRadiusMeters, el.snapCacheSize, el.logger)
	if err != nil {
		return nil, 0, err
	}
	return e, graph.NumberOfVertices(), nil
}
