// Package metrics holds the prometheus instrumentation for crawl runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for a crawl.
type Metrics struct {
	PagesCrawled  prometheus.Counter
	PagesFailed   prometheus.Counter
	FetchRetries  prometheus.Counter
	FetchDuration prometheus.Histogram
	FrontierSize  prometheus.Gauge
}

// New registers the collectors on a fresh registry. A dedicated registry
// keeps repeated runs in one process from colliding on registration.
func New() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		PagesCrawled: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitecorpus_pages_crawled_total",
			Help: "The total number of pages fetched and extracted successfully",
		}),
		PagesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitecorpus_pages_failed_total",
			Help: "The total number of pages skipped after all fetch attempts failed",
		}),
		FetchRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitecorpus_fetch_retries_total",
			Help: "The total number of fetch attempts that were retried",
		}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sitecorpus_fetch_duration_seconds",
			Help:    "Duration of individual fetch attempts",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
		}),
		FrontierSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sitecorpus_frontier_size",
			Help: "Current number of URLs waiting in the frontier",
		}),
	}
	return m, reg
}

// Handler serves the registry in the prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
