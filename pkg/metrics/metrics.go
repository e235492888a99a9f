package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultNamespace    = "hxcompose"
	composeSubsystem    = "compose"
	subrequestSubsystem = "subrequest"
	cacheSubsystem      = "cache"
)

// Outcome labels for compositions.
const (
	OutcomePassthrough = "passthrough"
	OutcomeRewritten   = "rewritten"
	OutcomeFailed      = "failed"
	OutcomeSkipped     = "skipped"
)

// Metrics holds the Prometheus collectors of the composition pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	compositions *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	subrequests  *prometheus.CounterVec
	failures     *prometheus.CounterVec
	depth        prometheus.Histogram
	cacheLookups *prometheus.CounterVec

	registry *prometheus.Registry
	handler  http.Handler
}

// New registers the collectors in a fresh registry, or in the registry
// given with WithRegistry.
func New(opts ...Option) *Metrics {
	o := options{
		namespace: defaultNamespace,
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		compositions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Subsystem: composeSubsystem,
			Name:      "total",
			Help:      "The total of composed responses by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Subsystem: composeSubsystem,
			Name:      "duration_seconds",
			Help:      "Duration in seconds of a composition including its sub-requests.",
			Buckets:   o.buckets,
		}, []string{"outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Subsystem: composeSubsystem,
			Name:      "error_total",
			Help:      "The total of failed compositions by error kind.",
		}, []string{"kind"}),
		depth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Subsystem: composeSubsystem,
			Name:      "depth",
			Help:      "Recursion depth at which compositions ran.",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		}),
		subrequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Subsystem: subrequestSubsystem,
			Name:      "total",
			Help:      "The total of fragment sub-requests by status code.",
		}, []string{"code"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Subsystem: cacheSubsystem,
			Name:      "lookup_total",
			Help:      "The total of source cache lookups by result.",
		}, []string{"source", "result"}),
		registry: o.registry,
	}

	m.registry.MustRegister(m.compositions, m.duration, m.failures, m.depth, m.subrequests, m.cacheLookups)
	if o.runtime {
		m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m.registry.MustRegister(collectors.NewGoCollector())
	}
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return m.handler
}

// Composition records a finished composition.
func (m *Metrics) Composition(outcome string, depth int, start time.Time) {
	if m == nil {
		return
	}
	m.compositions.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	m.depth.Observe(float64(depth))
}

// Failure counts a failed composition by error kind.
func (m *Metrics) Failure(kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(kind).Inc()
}

// Subrequest counts a fragment sub-request by response status.
func (m *Metrics) Subrequest(status int) {
	if m == nil {
		return
	}
	m.subrequests.WithLabelValues(strconv.Itoa(status)).Inc()
}

// CacheLookup counts a source cache lookup.
func (m *Metrics) CacheLookup(source string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(source, result).Inc()
}
