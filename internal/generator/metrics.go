package generator

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Failure stages reported on bower_render_failures_total.
const (
	StageLoad     = "load"
	StagePost     = "post_template"
	StagePage     = "page_template"
	StageIndex    = "index"
	StageWrite    = "write"
	StageManifest = "manifest"
)

// Metrics holds the build counters. Each instance owns a private registry so
// several services can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	PostsRendered  prometheus.Counter
	PostsSkipped   prometheus.Counter
	RenderFailures *prometheus.CounterVec
	BuildDuration  prometheus.Histogram
}

// NewMetrics creates and registers the build metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PostsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bower_posts_rendered_total",
			Help: "Total number of posts rendered",
		}),
		PostsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bower_posts_skipped_total",
			Help: "Total number of posts skipped because their inputs were unchanged",
		}),
		RenderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bower_render_failures_total",
			Help: "Total number of failures by build stage",
		}, []string{"stage"}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bower_build_duration_seconds",
			Help:    "Wall time of complete builds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
	m.registry.MustRegister(m.PostsRendered, m.PostsSkipped, m.RenderFailures, m.BuildDuration)
	return m
}

// Registry exposes the private registry, e.g. for an HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the node exporter textfile
// format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) failure(stage string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RenderFailures.WithLabelValues(stage).Add(float64(n))
}
