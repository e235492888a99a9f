package hxcompose

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/hxcompose/internal"
	"github.com/dmitrymomot/hxcompose/pkg/compose"
	"github.com/dmitrymomot/hxcompose/pkg/dispatch"
	"github.com/dmitrymomot/hxcompose/pkg/logger"
)

// Type aliases - public API
type (
	// App serves composed pages plus health and metrics endpoints.
	App = internal.App

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler writes the response for an error returned by a handler.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// HTTPError is an error with a response status.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// ResponseWriter records the status and size of a response.
	ResponseWriter = internal.ResponseWriter

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor
)

// Constructors

// New creates a new application with the given options.
//
// Example:
//
//	composer, err := compose.New(compose.Select(dispatch.Buffered(dispatch.Handler(sources)), cfg))
//	app := hxcompose.New(
//	    hxcompose.WithLogger(log),
//	    hxcompose.WithMiddleware(middlewares.RequestID(), middlewares.AccessLog(log)),
//	    hxcompose.WithComposer(composer),
//	)
//	err = app.Run(":8080")
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// App options

// WithMiddleware adds middleware to every routed handler.
// The first middleware is the outermost.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithContent sets the catch-all handler.
func WithContent(h HandlerFunc) Option {
	return internal.WithContent(h)
}

// WithComposer serves every unmatched path through d, usually a
// *compose.Composer. Failures go to the App's error handler.
func WithComposer(d dispatch.Dispatcher, opts ...compose.HandlerOption) Option {
	return internal.WithContent(compose.NewHandler(d, opts...).Serve)
}

// WithMount serves h under pattern behind the middleware chain.
func WithMount(pattern string, h http.Handler) Option {
	return internal.WithMount(pattern, h)
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled. Files are served with default cache headers.
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithErrorHandler replaces the default HTML error pages.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	hxcompose.WithHealthChecks(
//	    hxcompose.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithMetrics exposes h at path outside the middleware chain.
func WithMetrics(path string, h http.Handler) Option {
	return internal.WithMetrics(path, h)
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// Health options

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessTimeout bounds each readiness run.
func WithReadinessTimeout(d time.Duration) HealthOption {
	return internal.WithReadinessTimeout(d)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn func(context.Context) error) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Address overrides the address passed to Run.
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the server lifecycle logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run before the server listens.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Errors

// NewHTTPError creates an error with a response status.
func NewHTTPError(code int, detail string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, detail, opts...)
}

// StatusOf returns the response status for err.
func StatusOf(err error) int {
	return internal.StatusOf(err)
}

// DefaultErrorHandler renders failures as HTML error pages.
func DefaultErrorHandler(l *slog.Logger) ErrorHandler {
	return internal.DefaultErrorHandler(l)
}
