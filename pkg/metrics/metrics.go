// Package metrics exports planner outcomes to Prometheus
package metrics

import (
	"net/http"

	"github.com/kass/go-rrt-planner/pkg/rrt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the planner metrics on its own registry
type Collector struct {
	registry *prometheus.Registry

	SearchesTotal    *prometheus.CounterVec
	SearchDurationMs prometheus.Histogram
	Iterations       prometheus.Histogram
	TreeSize         prometheus.Histogram
	Waypoints        prometheus.Histogram
}

// New creates and registers the collectors
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		SearchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rrtplan_searches_total",
			Help: "Total number of searches by terminal status",
		}, []string{"status"}),
		SearchDurationMs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rrtplan_search_duration_ms",
			Help:    "Search duration in milliseconds",
			Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
		}),
		Iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rrtplan_search_iterations",
			Help:    "Growth iterations used per search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		}),
		TreeSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rrtplan_tree_size",
			Help:    "Search tree node count at termination",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		}),
		Waypoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rrtplan_waypoints",
			Help:    "Waypoints returned by successful searches",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
	}

	c.registry.MustRegister(c.SearchesTotal, c.SearchDurationMs, c.Iterations, c.TreeSize, c.Waypoints)
	return c
}

// Observe records one finished search
func (c *Collector) Observe(res rrt.Result) {
	c.SearchesTotal.WithLabelValues(res.Status.String()).Inc()
	c.SearchDurationMs.Observe(float64(res.Elapsed.Microseconds()) / 1000)
	c.Iterations.Observe(float64(res.Iterations))
	c.TreeSize.Observe(float64(res.TreeSize))
	if res.Status == rrt.Succeeded {
		c.Waypoints.Observe(float64(len(res.Waypoints)))
	}
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
