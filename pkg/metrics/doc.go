// Package metrics exposes Prometheus collectors for the composition
// pipeline: composed responses by outcome and duration, failures by error
// kind, recursion depth, fragment sub-requests by status code, and source
// cache hits.
//
//	m := metrics.New(metrics.WithRuntimeMetrics())
//	r.Handle("/metrics", m.Handler())
//
// All recording methods are safe on a nil *Metrics, so components can take
// an optional collector without checks at every call site.
package metrics
