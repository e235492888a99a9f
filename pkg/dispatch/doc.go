// Package dispatch defines the Dispatcher capability the composer issues
// requests through, plus the implementations used by the server:
//
//   - Handler runs an http.Handler in process and streams its output back
//     as an *http.Response.
//   - Client sends requests to a remote origin over an *http.Client.
//   - Limit bounds the number of in-flight requests with a weighted
//     semaphore; Ready waits for a free slot.
//   - Buffered reads bodies into memory and sets Content-Length.
//   - Func adapts a plain function.
//
// Readiness is the backpressure signal: a caller that must not overload the
// inner handler awaits Ready before each Dispatch.
package dispatch
