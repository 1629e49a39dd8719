// Package metrics constructs the metrics the application will track.
package metrics

import (
	"context"
	"net/http"
	"runtime"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	errors       prometheus.Counter
	panics       prometheus.Counter
	quotaDenials prometheus.Counter
	goroutines   prometheus.Gauge
	total        atomic.Int64
}

var m = newMetrics()

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()

	m := metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dealerdesk_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "status"},
		),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dealerdesk_http_errors_total",
			Help: "Total number of requests answered with an error",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dealerdesk_http_panics_total",
			Help: "Total number of recovered panics",
		}),
		quotaDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dealerdesk_branch_quota_denials_total",
			Help: "Total number of branch creations refused by the tenant quota",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dealerdesk_goroutines",
			Help: "Number of goroutines sampled every thousand requests",
		}),
	}

	reg.MustRegister(
		m.requests,
		m.errors,
		m.panics,
		m.quotaDenials,
		m.goroutines,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &m
}

// Handler serves the registered metrics in the prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the registry for tests and extra collectors.
func Registry() *prometheus.Registry {
	return m.registry
}

// AddRequests increments the request count by one and returns the number of
// requests seen by this process.
func AddRequests(ctx context.Context, method string, status string) int64 {
	m.requests.WithLabelValues(method, status).Inc()
	return m.total.Add(1)
}

// AddGoroutines refreshes the goroutine gauge.
func AddGoroutines(ctx context.Context) int64 {
	g := int64(runtime.NumGoroutine())
	m.goroutines.Set(float64(g))
	return g
}

// AddErrors increments the errors count by one.
func AddErrors(ctx context.Context) {
	m.errors.Inc()
}

// AddPanics increments the panics count by one.
func AddPanics(ctx context.Context) {
	m.panics.Inc()
}

// AddQuotaDenials increments the branch quota denial count by one.
func AddQuotaDenials(ctx context.Context) {
	m.quotaDenials.Inc()
}
