package middlewares

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/hxcompose/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// Timeout returns middleware that puts a deadline on the request context.
//
// The handler runs on the calling goroutine and must observe the context.
// A failure after the deadline passed is wrapped in a TimeoutError, which
// maps to 504 unless the response already started. A handler that
// finishes successfully past the deadline is left alone.
//
// A non-positive timeout uses DefaultTimeout.
func Timeout(timeout time.Duration) internal.Middleware {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			err := next(w, r.WithContext(ctx))
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return &TimeoutError{Err: err, Duration: timeout}
			}
			return err
		}
	}
}
