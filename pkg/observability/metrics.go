package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics shared by all services. Each service
// registers them on its own registry so /metrics stays per-process.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LoginsTotal *prometheus.CounterVec

	DirectoryLookupsTotal   *prometheus.CounterVec
	DirectoryLookupDuration prometheus.Histogram

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	NotificationsSweptTotal prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates and registers all metrics on a fresh registry.
func NewMetrics(service string) *Metrics {
	registry := prometheus.NewRegistry()
	labels := prometheus.Labels{"service": service}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "leadflow_http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: labels,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "leadflow_http_request_duration_seconds",
				Help:        "HTTP request duration in seconds",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"method", "path"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "leadflow_logins_total",
				Help:        "Login attempts by outcome",
				ConstLabels: labels,
			},
			[]string{"outcome"},
		),
		DirectoryLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "leadflow_directory_lookups_total",
				Help:        "Cross-service user lookups by outcome",
				ConstLabels: labels,
			},
			[]string{"outcome"},
		),
		DirectoryLookupDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "leadflow_directory_lookup_duration_seconds",
				Help:        "Cross-service user lookup duration in seconds",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "leadflow_cache_hits_total",
				Help:        "Stage cache hits",
				ConstLabels: labels,
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "leadflow_cache_misses_total",
				Help:        "Stage cache misses",
				ConstLabels: labels,
			},
		),
		NotificationsSweptTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "leadflow_notifications_swept_total",
				Help:        "Notifications created by the stale-lead sweeper",
				ConstLabels: labels,
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LoginsTotal,
		m.DirectoryLookupsTotal,
		m.DirectoryLookupDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.NotificationsSweptTotal,
	)

	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the response status for metric labels.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware instruments HTTP requests with count and duration metrics. The
// path label uses the route template, not the raw URL, to bound cardinality.
func (m *Metrics) Middleware(routeTemplate func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			path := r.URL.Path
			if routeTemplate != nil {
				if tmpl := routeTemplate(r); tmpl != "" {
					path = tmpl
				}
			}
			m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}
