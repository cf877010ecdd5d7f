package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/biketrips/pkg/datastructure"
	"github.com/lintang-b-s/biketrips/pkg/engine/routing"
	"github.com/lintang-b-s/biketrips/pkg/geo"
	"github.com/lintang-b-s/biketrips/pkg/osmparser"
	"github.com/lintang-b-s/biketrips/pkg/spatialindex"
	"github.com/lintang-b-s/biketrips/pkg/util"
	"go.uber.org/zap"
)

const (
	// first snapping search box, in km
	initialSnapRadius = 0.05
	defaultSnapRadius = 1000.0
	defaultCacheSize  = 1 << 16
)

// Engine is the routing oracle of one batch: nearest-node snapping on an R-tree and
// shortest paths by edge length. It is safe for concurrent use.
type Engine struct {
	routingEngine *routing.RoutingEngine
	rtree         *spatialindex.Rtree
	snapCache     *lru.Cache[geo.Coordinate, datastructure.Index]
	snapRadius    float64 // km
	logger        *zap.Logger
}

func (e *Engine) GetGraph() *datastructure.Graph {
	return e.routingEngine.GetGraph()
}

// NewEngine indexes graph for snapping. snapRadiusMeters bounds how far a coordinate may be
// from its nearest node; coordinates farther away are reported as not in the graph.
func NewEngine(graph *datastructure.Graph, snapRadiusMeters float64, snapCacheSize int, logger *zap.Logger) (*Engine, error) {
	if graph == nil || graph.NumberOfVertices() == 0 {
		return nil, util.WrapErrorf(nil, util.ErrGraphUnusable, "road graph has no vertices")
	}
	if snapRadiusMeters <= 0 {
		snapRadiusMeters = defaultSnapRadius
	}
	if snapCacheSize <= 0 {
		snapCacheSize = defaultCacheSize
	}

	rt := spatialindex.NewRtree()
	rt.Build(graph, logger)

	snapCache, err := lru.New[geo.Coordinate, datastructure.Index](snapCacheSize)
	if err != nil {
		return nil, err
	}

	return &Engine{
		routingEngine: routing.NewRoutingEngine(graph, logger),
		rtree:         rt,
		snapCache:     snapCache,
		snapRadius:    snapRadiusMeters / 1000,
		logger:        logger,
	}, nil
}

// LoadGraph reads the bzip2 graph cache when present and built for boundary, otherwise builds the
// bike graph from the OSM extract, truncated to boundary, and writes the cache. A nil boundary
// accepts any cache.
func LoadGraph(ctx context.Context, osmFile, cacheFile string, boundary *geo.CityBoundary,
	logger *zap.Logger) (*datastructure.Graph, error) {
	if cacheFile != "" {
		if _, err := os.Stat(cacheFile); err == nil {
			logger.Info("Reading graph from ", zap.String("graphFilePath", cacheFile))
			graph, err := datastructure.ReadGraph(cacheFile)
			if err != nil {
				return nil, util.WrapErrorf(err, util.ErrGraphUnusable, "read graph cache %s", cacheFile)
			}
			if cacheMatches(graph, boundary) {
				return graph, nil
			}
			if osmFile == "" {
				return nil, util.WrapErrorf(nil, util.ErrGraphUnusable,
					"graph cache %s was built for another city boundary and no osm file is configured", cacheFile)
			}
			logger.Warn("graph cache was built for another city boundary, rebuilding",
				zap.String("graphFilePath", cacheFile))
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, util.WrapErrorf(err, util.ErrGraphUnusable, "stat graph cache %s", cacheFile)
		}
	}

	if osmFile == "" {
		return nil, util.WrapErrorf(nil, util.ErrGraphUnusable, "no graph cache and no osm file configured")
	}

	logger.Info("Parsing openstreetmap extract ", zap.String("osmFile", osmFile))
	parser := osmparser.NewOSMParser(boundary)
	graph, err := parser.Parse(ctx, osmFile, logger)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrGraphUnusable, "parse osm file %s", osmFile)
	}

	if cacheFile != "" {
		logger.Info("Writing graph cache ", zap.String("graphFilePath", cacheFile))
		err := os.MkdirAll(filepath.Dir(cacheFile), 0o755)
		if err == nil {
			err = graph.WriteGraph(cacheFile)
		}
		if err != nil {
			// the batch can still run on the parsed graph
			logger.Warn("failed to write graph cache", zap.String("graphFilePath", cacheFile), zap.Error(err))
		}
	}
	return graph, nil
}

func cacheMatches(graph *datastructure.Graph, boundary *geo.CityBoundary) bool {
	if boundary == nil {
		return true
	}
	cached, ok := graph.GetBoundary()
	return ok && cached.Equal(*boundary)
}

// NearestNode snaps (lat, lon) to the closest graph vertex.
func (e *Engine) NearestNode(lat, lon float64) (datastructure.Index, error) {
	key := geo.NewCoordinate(lat, lon)
	if v, ok := e.snapCache.Get(key); ok {
		return v, nil
	}

	v, dist, found := e.rtree.NearestVertex(e.GetGraph(), lat, lon, min(initialSnapRadius, e.snapRadius), e.snapRadius)
	if !found || dist > e.snapRadius {
		return datastructure.INVALID_VERTEX_ID, util.WrapErrorf(nil, util.ErrNoRoute,
			"no graph node within %.0f m of (%f, %f)", e.snapRadius*1000, lat, lon)
	}
	e.snapCache.Add(key, v)
	return v, nil
}

func (e *Engine) ShortestPath(s, t datastructure.Index) (float64, []datastructure.Index, error) {
	return e.routingEngine.ShortestPath(s, t)
}

func (e *Engine) GetVertexCoordinate(v datastructure.Index) geo.Coordinate {
	lat, lon := e.GetGraph().GetVertexCoordinates(v)
	return geo.NewCoordinate(lat, lon)
}
