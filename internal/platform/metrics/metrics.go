package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry for the service.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	activitiesScheduled prometheus.Counter
	repetitionsDropped  prometheus.Counter
	categoriesUnplaced  prometheus.Counter
	routinesPlanned     prometheus.Counter
	geocodeCacheHits    prometheus.Counter
	geocodeCacheMisses  prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		activitiesScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routine_activities_scheduled_total",
			Help: "Activities placed across all planned routines",
		}),
		repetitionsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routine_repetitions_dropped_total",
			Help: "Requested repetitions that could not be placed",
		}),
		categoriesUnplaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routine_categories_unplaced_total",
			Help: "Categories that received no placement in a routine",
		}),
		routinesPlanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routines_planned_total",
			Help: "Routines successfully planned",
		}),
		geocodeCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geocode_cache_hits_total",
			Help: "Addresses served from the geocode cache",
		}),
		geocodeCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geocode_cache_misses_total",
			Help: "Addresses resolved by the upstream geocoder",
		}),
	}

	registry.MustRegister(
		m.requestDuration,
		m.requestTotal,
		m.activitiesScheduled,
		m.repetitionsDropped,
		m.categoriesUnplaced,
		m.routinesPlanned,
		m.geocodeCacheHits,
		m.geocodeCacheMisses,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	s := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, s).Observe(d.Seconds())
	m.requestTotal.WithLabelValues(method, path, s).Inc()
}

// ObserveRoutine records the outcome of one planning run.
func (m *Metrics) ObserveRoutine(scheduled, dropped, unplaced int) {
	if m == nil {
		return
	}
	m.routinesPlanned.Inc()
	m.activitiesScheduled.Add(float64(scheduled))
	m.repetitionsDropped.Add(float64(dropped))
	m.categoriesUnplaced.Add(float64(unplaced))
}

func (m *Metrics) ObserveGeocodeCache(hits, misses int) {
	if m == nil {
		return
	}
	m.geocodeCacheHits.Add(float64(hits))
	m.geocodeCacheMisses.Add(float64(misses))
}
