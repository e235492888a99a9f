package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/hxcompose/pkg/health"
	"github.com/dmitrymomot/hxcompose/pkg/logger"
)

// Server defaults.
const (
	defaultAddress           = ":8080"
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 60 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App serves composed pages plus operational endpoints.
// App is immutable after creation.
type App struct {
	router          chi.Router
	errorHandler    ErrorHandler
	notFoundHandler HandlerFunc
	content         HandlerFunc
	logger          *slog.Logger
	health          *healthConfig
	metrics         *metricsRoute
	middlewares     []Middleware
	mounts          []mount
}

// mount is an http.Handler served under a path prefix. Plain mounts skip
// the middleware chain.
type mount struct {
	handler http.Handler
	pattern string
	plain   bool
}

type metricsRoute struct {
	handler http.Handler
	path    string
}

// New creates an App with the given options.
//
// Example:
//
//	app := internal.New(
//	    internal.WithMiddleware(middlewares.RequestID(), middlewares.AccessLog(log)),
//	    internal.WithContent(compose.NewHandler(composer).Serve),
//	)
func New(opts ...Option) *App {
	a := &App{
		router: chi.NewRouter(),
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.errorHandler == nil {
		a.errorHandler = DefaultErrorHandler(a.logger)
	}
	if a.notFoundHandler == nil {
		a.notFoundHandler = func(http.ResponseWriter, *http.Request) error {
			return ErrNotFound("The page you are looking for does not exist.")
		}
	}
	a.setupRoutes()
	return a
}

// Handler returns the root http.Handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run starts the HTTP server and blocks until shutdown.
//
// Example:
//
//	err := app.Run(":8080", internal.Logger(log), internal.ShutdownHook(redis.Shutdown(client)))
func (a *App) Run(addr string, opts ...RunOption) error {
	return serve(a.router, newRunConfig(addr, a.logger, opts))
}

func (a *App) setupRoutes() {
	// Probes and metrics are outside the middleware chain so scrapes do not
	// show up in access logs.
	if a.health != nil {
		a.router.Get(a.health.livenessPath, health.LivenessHandler())
		a.router.Get(a.health.readinessPath, health.ReadinessHandler(a.health.checks,
			health.WithTimeout(a.health.timeout),
			health.WithLogger(a.logger),
		))
	}
	if a.metrics != nil {
		a.router.Method(http.MethodGet, a.metrics.path, a.metrics.handler)
	}

	for _, m := range a.mounts {
		if m.plain {
			a.router.Mount(m.pattern, m.handler)
			continue
		}
		a.router.Mount(m.pattern, a.route(FromHTTP(m.handler)))
	}

	a.router.NotFound(a.route(a.notFoundHandler))
	a.router.MethodNotAllowed(a.route(func(http.ResponseWriter, *http.Request) error {
		return NewHTTPError(http.StatusMethodNotAllowed, "This method is not allowed for this resource.")
	}))
	if a.content != nil {
		a.router.Handle("/*", a.route(a.content))
	}
}

// route wraps h with the middleware chain and the error handler.
func (a *App) route(h HandlerFunc) http.HandlerFunc {
	h = Chain(h, a.middlewares...)
	return func(w http.ResponseWriter, r *http.Request) {
		rw := AsResponseWriter(w)
		if err := h(rw, r); err != nil {
			a.handleError(rw, r, err)
		}
	}
}

// handleError is a no-op once the response has started; the failure is
// still visible to middlewares such as the access log.
func (a *App) handleError(rw *ResponseWriter, r *http.Request, err error) {
	if rw.Written() {
		return
	}
	a.errorHandler(rw, r, err)
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
	timeout       time.Duration
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessTimeout bounds each readiness run.
func WithReadinessTimeout(d time.Duration) HealthOption {
	return func(c *healthConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	internal.WithReadinessCheck("redis", redis.Healthcheck(client))
func WithReadinessCheck(name string, fn func(context.Context) error) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		if fn != nil {
			c.checks[name] = fn
		}
	}
}
