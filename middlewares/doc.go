// Package middlewares provides HTTP middleware for hxcompose applications.
//
// Every middleware wraps an error-returning internal.HandlerFunc, so it
// can observe the error a handler returns before the App's error handler
// renders it.
//
// # Request ID
//
// RequestID assigns a ULID to each request, or reuses the one found in
// X-Request-ID and similar headers. Use RequestIDExtractor with
// logger.New to add request_id to every log entry:
//
//	log := logger.New(cfg.Log, middlewares.RequestIDExtractor())
//
// # Access log
//
// AccessLog writes one structured line per request with status, size and
// duration. Errors returned by the handler are logged with the status the
// error handler will send.
//
// # Recover
//
// Recover turns panics into a PanicError, logged with a stack trace.
//
// # Timeout
//
// Timeout puts a deadline on the request context. Composition observes it
// through every sub-request; a failure after the deadline becomes a
// TimeoutError, which the default error handler answers with 504.
//
// # CORS
//
// CORS answers preflight requests and adds the Access-Control headers.
// The defaults allow read-only requests carrying htmx headers.
//
// # Recommended Order
//
//	hxcompose.WithMiddleware(
//	    middlewares.CORS(),                  // answer preflight first
//	    middlewares.RequestID(),             // ID for all later logging
//	    middlewares.AccessLog(log),          // sees panics and timeouts as errors
//	    middlewares.Recover(log),
//	    middlewares.Timeout(30*time.Second),
//	)
package middlewares
