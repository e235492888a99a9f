package source

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/hxcompose/pkg/cache"
	"github.com/dmitrymomot/hxcompose/pkg/metrics"
)

// Option configures a source.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	cache    cache.Cache[Object]
	ttl      time.Duration
	sanitize func(string) string
	index    string
}

func newOptions(opts []Option) options {
	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ttl:    time.Minute,
		index:  "index.html",
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records cache lookups.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithCache keeps rendered objects in c. Without it every request loads
// from the backend.
func WithCache(c cache.Cache[Object]) Option {
	return func(o *options) { o.cache = c }
}

// WithTTL sets how long cached objects live. Default: 1 minute.
func WithTTL(d time.Duration) Option {
	return func(o *options) { o.ttl = d }
}

// WithSanitizer filters HTML bodies, for example sanitizer.Fragment.
func WithSanitizer(fn func(string) string) Option {
	return func(o *options) { o.sanitize = fn }
}

// WithIndex names the file served for directory paths. Default: index.html.
func WithIndex(name string) Option {
	return func(o *options) {
		if name != "" {
			o.index = name
		}
	}
}

// fetcher loads objects through the configured cache.
type fetcher struct {
	name   string
	loader *cache.Loader[Object]
	ttl    time.Duration
	logger *slog.Logger
}

func (o *options) fetcher(name string) fetcher {
	f := fetcher{name: name, ttl: o.ttl, logger: o.logger}
	if o.cache != nil {
		m := o.metrics
		f.loader = cache.NewLoader(o.cache, func(hit bool) { m.CacheLookup(name, hit) })
	}
	return f
}

func (f fetcher) get(ctx context.Context, key string, load func(context.Context) (Object, error)) (Object, error) {
	if f.loader == nil {
		return load(ctx)
	}
	return f.loader.GetOrSet(ctx, key, func(ctx context.Context) (Object, time.Duration, error) {
		obj, err := load(ctx)
		return obj, f.ttl, err
	})
}

// fail writes the status for err. Server-side failures are logged.
func (f fetcher) fail(w http.ResponseWriter, r *http.Request, name string, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		f.logger.ErrorContext(r.Context(), "source load failed",
			slog.String("source", f.name),
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
	}
	http.Error(w, http.StatusText(status), status)
}
