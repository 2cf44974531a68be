package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedRoute is the label value used for requests that do not
// resolve to any registered route, ensuring bounded cardinality.
const unmatchedRoute = "unmatched"

// Metrics holds all Prometheus metrics for the dispatch core. Each
// instance owns its registry, so independently constructed routers
// (and tests) never collide on collector registration.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	timeoutsTotal   prometheus.Counter
	droppedWrites   prometheus.Counter
	hookFailures    *prometheus.CounterVec
	panicsRecovered prometheus.Counter
	bodyRejected    *prometheus.CounterVec
	ignoredRequests prometheus.Counter
	notFoundTotal   prometheus.Counter
	registry        *prometheus.Registry
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "routegrid"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of dispatched HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets: []float64{
				.001, .005, .01, .025, .05,
				.1, .25, .5, 1, 2.5, 5, 10,
			},
		},
		[]string{"method", "route", "status"},
	)

	m.timeoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_timeouts_total",
			Help:      "Total number of requests ended by the per-route timeout",
		},
	)

	m.droppedWrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_response_writes_total",
			Help:      "Total number of response writes dropped by the single-write guard",
		},
	)

	m.hookFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hook_failures_total",
			Help:      "Total number of hook rejections and faults",
		},
		[]string{"hook"},
	)

	m.panicsRecovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panics_recovered_total",
			Help:      "Total number of panics recovered at the pipeline boundary",
		},
	)

	m.bodyRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "body_rejected_total",
			Help:      "Total number of requests rejected during body admission",
		},
		[]string{"reason"},
	)

	m.ignoredRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ignored_requests_total",
			Help:      "Total number of requests ceded via the ignore list",
		},
	)

	m.notFoundTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_not_found_total",
			Help:      "Total number of requests that resolved to no route",
		},
	)

	m.registerCollectors()

	return m
}

// registerCollectors registers all collectors with the registry.
func (m *Metrics) registerCollectors() {
	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.timeoutsTotal,
		m.droppedWrites,
		m.hookFailures,
		m.panicsRecovered,
		m.bodyRejected,
		m.ignoredRequests,
		m.notFoundTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// RecordRequest records a completed request.
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = unmatchedRoute
	}
	code := strconv.Itoa(status)
	m.requestsTotal.WithLabelValues(method, route, code).Inc()
	m.requestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
}

// RecordTimeout records a request ended by the per-route timeout.
func (m *Metrics) RecordTimeout() {
	m.timeoutsTotal.Inc()
}

// RecordDroppedWrite records a response write dropped by the guard.
func (m *Metrics) RecordDroppedWrite() {
	m.droppedWrites.Inc()
}

// RecordHookFailure records a hook rejection or fault.
func (m *Metrics) RecordHookFailure(hook string) {
	m.hookFailures.WithLabelValues(hook).Inc()
}

// RecordPanic records a panic recovered at the pipeline boundary.
func (m *Metrics) RecordPanic() {
	m.panicsRecovered.Inc()
}

// RecordBodyRejected records a request rejected during body admission.
func (m *Metrics) RecordBodyRejected(reason string) {
	m.bodyRejected.WithLabelValues(reason).Inc()
}

// RecordIgnored records a request ceded via the ignore list.
func (m *Metrics) RecordIgnored() {
	m.ignoredRequests.Inc()
}

// RecordNotFound records a request that resolved to no route.
func (m *Metrics) RecordNotFound() {
	m.notFoundTotal.Inc()
}

// Handler returns an http.Handler exposing the metrics registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
