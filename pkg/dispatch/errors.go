package dispatch

import "errors"

// Sentinel errors for dispatchers.
var (
	// ErrHandlerPanic is returned through the response body when an
	// in-process handler panics.
	ErrHandlerPanic = errors.New("dispatch: handler panicked")

	// ErrBodyRead wraps failures to read a response body inside a
	// dispatcher, such as the buffering done by Buffered.
	ErrBodyRead = errors.New("dispatch: response body read failed")

	// ErrNoBaseURL is returned by Client when a request has no absolute URL
	// and no base URL is configured.
	ErrNoBaseURL = errors.New("dispatch: request URL is not absolute")
)
