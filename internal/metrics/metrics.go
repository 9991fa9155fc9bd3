package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "singme"

// Metrics owns a private registry so tests can build as many as they like.
// Every method is safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	votesTotal          *prometheus.CounterVec
	deletedTotal        prometheus.Counter
	tierPopulation      *prometheus.GaugeVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
		votesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_total",
				Help:      "Votes applied, by direction",
			},
			[]string{"direction"},
		),
		deletedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recommendations_deleted_total",
				Help:      "Recommendations removed after reaching the downvote threshold",
			},
		),
		tierPopulation: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "recommendations",
				Help:      "Stored recommendations per random-pick tier",
			},
			[]string{"tier"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.votesTotal,
		m.deletedTotal,
		m.tierPopulation,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// VoteApplied counts a vote; direction is "up" or "down".
func (m *Metrics) VoteApplied(direction string) {
	if m == nil {
		return
	}
	m.votesTotal.WithLabelValues(direction).Inc()
}

// RecommendationDeleted counts a threshold deletion.
func (m *Metrics) RecommendationDeleted() {
	if m == nil {
		return
	}
	m.deletedTotal.Inc()
}

// SetTierPopulation publishes the size of both random-pick tiers.
func (m *Metrics) SetTierPopulation(top, rest int) {
	if m == nil {
		return
	}
	m.tierPopulation.WithLabelValues("top").Set(float64(top))
	m.tierPopulation.WithLabelValues("rest").Set(float64(rest))
}
