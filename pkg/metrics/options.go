package metrics

import "github.com/prometheus/client_golang/prometheus"

type options struct {
	registry  *prometheus.Registry
	namespace string
	buckets   []float64
	runtime   bool
}

// Option configures Metrics.
type Option func(*options)

// WithRegistry registers collectors in r instead of a fresh registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithNamespace overrides the metric namespace ("hxcompose").
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithBuckets sets the histogram buckets for composition durations.
func WithBuckets(b ...float64) Option {
	return func(o *options) {
		if len(b) > 0 {
			o.buckets = b
		}
	}
}

// WithRuntimeMetrics adds the Go runtime and process collectors.
func WithRuntimeMetrics() Option {
	return func(o *options) {
		o.runtime = true
	}
}
