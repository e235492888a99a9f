package compose

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/hxcompose/pkg/metrics"
)

// Option configures a Composer.
type Option func(*Composer)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(c *Composer) {
		c.cfg = cfg
	}
}

// WithSkip sets a predicate for requests that are forwarded without
// composition.
func WithSkip(skip func(*http.Request) bool) Option {
	return func(c *Composer) {
		c.skip = skip
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records compositions and sub-requests in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Composer) {
		c.metrics = m
	}
}
