// Package internal holds the HTTP application shell of hxcompose.
//
// Import "github.com/dmitrymomot/hxcompose" instead; it re-exports the
// public API.
//
// # Handlers and middleware
//
// Handlers return errors instead of writing error responses:
//
//	type HandlerFunc func(w http.ResponseWriter, r *http.Request) error
//
// Middleware wraps a HandlerFunc, so it sees both the response (through
// [ResponseWriter]) and the returned error. The App chains the configured
// middleware around every routed handler and hands a returned error to a
// single [ErrorHandler] at the end, unless the response already started.
//
//	app := internal.New(
//	    internal.WithLogger(log),
//	    internal.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.AccessLog(log),
//	        middlewares.Recover(log),
//	        middlewares.Timeout(30*time.Second),
//	    ),
//	    internal.WithContent(compose.NewHandler(composer).Serve),
//	)
//
// # Errors
//
// Any error with a StatusCode() int method picks its response status;
// everything else is a 500. [HTTPError] is the general purpose carrier.
// [DefaultErrorHandler] renders an HTML error page naming the composition
// error kind, never the error text.
//
// # Routes
//
// Health probes and the metrics endpoint are registered outside the
// middleware chain. Mounts and the catch-all content handler run behind it:
//
//	GET /health/live      liveness, always OK
//	GET /health/ready     readiness, runs WithReadinessCheck checks
//	GET <metrics path>    WithMetrics
//	<pattern>/*           WithMount, WithStaticFiles
//	/*                    WithContent
//
// # Lifecycle
//
// Run executes startup hooks, listens, and on SIGINT or SIGTERM shuts the
// server down within the shutdown timeout before running shutdown hooks
// in registration order.
package internal
