package dispatch

import (
	"context"
	"net/http"
)

// Dispatcher is the inner request handler the composer forwards to.
// Implementations must tolerate concurrent use.
type Dispatcher interface {
	// Ready blocks until the dispatcher can accept another request or ctx
	// is done. Callers pair every successful Ready with one Dispatch.
	Ready(ctx context.Context) error

	// Dispatch sends req and returns its response. The request context
	// governs cancellation. The caller must close the response body.
	Dispatch(req *http.Request) (*http.Response, error)
}

// Func adapts a function to a Dispatcher that is always ready.
type Func func(req *http.Request) (*http.Response, error)

// Ready reports ctx.Err().
func (f Func) Ready(ctx context.Context) error {
	return ctx.Err()
}

// Dispatch calls f(req).
func (f Func) Dispatch(req *http.Request) (*http.Response, error) {
	return f(req)
}
