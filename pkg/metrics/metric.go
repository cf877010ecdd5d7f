package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector counts what happens to samples and trips in a batch run.
type Collector struct {
	reg *prometheus.Registry

	SamplesRead      prometheus.Counter
	SamplesMalformed prometheus.Counter
	CandidateTrips   prometheus.Counter
	JitterDropped    prometheus.Counter
	ValidatedTrips   prometheus.Counter
	NoRouteSkipped   prometheus.Counter
	ExportedTrips    prometheus.Counter
	ExportErrors     *prometheus.CounterVec // format label: csv|json

	RouteDuration prometheus.Histogram
	BatchDuration prometheus.Histogram
	GraphVertices prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		SamplesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "biketrips_samples_read_total",
			Help: "Position samples read from the sample store.",
		}),
		SamplesMalformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "biketrips_samples_malformed_total",
			Help: "Position samples dropped for missing or invalid fields.",
		}),
		CandidateTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "biketrips_candidate_trips_total",
			Help: "Consecutive sample pairs with a position change.",
		}),
		JitterDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "biketrips_jitter_dropped_total",
			Help: "Candidate trips dropped as GPS jitter.",
		}),
		ValidatedTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "biketrips_validated_trips_total",
			Help: "Candidate trips that survived noise filtering.",
		}),
		NoRouteSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "biketrips_no_route_skipped_total",
			Help: "Validated trips skipped because no route was found.",
		}),
		ExportedTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "biketrips_exported_trips_total",
			Help: "Timestamped routes handed to the exporters.",
		}),
		ExportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "biketrips_export_errors_total",
			Help: "Failed exports.",
		}, []string{"format"}),
		RouteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "biketrips_route_resolution_duration_seconds",
			Help:    "Duration of snapping and shortest path search of one trip.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "biketrips_batch_duration_seconds",
			Help:    "Duration of one city/day batch run.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		}),
		GraphVertices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "biketrips_graph_vertices",
			Help: "Vertices of the loaded road graph.",
		}),
	}

	reg.MustRegister(
		c.SamplesRead, c.SamplesMalformed,
		c.CandidateTrips, c.JitterDropped, c.ValidatedTrips,
		c.NoRouteSkipped, c.ExportedTrips, c.ExportErrors,
		c.RouteDuration, c.BatchDuration, c.GraphVertices,
	)
	return c
}

func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.reg
}

func (c *Collector) ObserveRoute(start time.Time) {
	c.RouteDuration.Observe(time.Since(start).Seconds())
}

// WriteTextfile writes the registry in the node_exporter textfile format.
// An empty path disables it.
func (c *Collector) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.reg)
}
