package compose

import (
	"errors"

	"github.com/dmitrymomot/hxcompose/pkg/dispatch"
)

// Error kinds. Failures wrap one of these together with the cause, so
// errors.Is matches both the kind and the underlying error, also across
// nested compositions.
var (
	// ErrDispatch: the inner dispatcher failed for the original or a
	// synthesized request.
	ErrDispatch = errors.New("compose: dispatch failed")

	// ErrBodyRead: a response body could not be buffered, here or inside
	// the dispatcher chain (dispatch.Buffered).
	ErrBodyRead = dispatch.ErrBodyRead

	// ErrURIConstruction: a directive target could not be combined with
	// the request URI.
	ErrURIConstruction = errors.New("compose: invalid directive uri")

	// ErrRewriteEngine: the rewrite engine rejected the input or a handler
	// failed, including fragments that are not valid UTF-8.
	ErrRewriteEngine = errors.New("compose: rewrite failed")

	// ErrRecursionLimit: the depth ceiling was reached.
	ErrRecursionLimit = errors.New("compose: recursion limit exceeded")

	// ErrMissingResolution: injection met a directive with no resolved entry.
	ErrMissingResolution = errors.New("compose: missing resolution")

	// ErrInvalidConfig is returned by Config.Validate and New.
	ErrInvalidConfig = errors.New("compose: invalid config")
)

// kinds is ordered from the most specific cause outward: a nested
// recursion failure is reported as such even though the parent wraps it
// in ErrDispatch.
var kinds = []struct {
	err  error
	name string
}{
	{ErrRecursionLimit, "RecursionLimitExceeded"},
	{ErrMissingResolution, "MissingResolutionError"},
	{ErrURIConstruction, "URIConstructionError"},
	{ErrRewriteEngine, "RewriteEngineError"},
	{ErrBodyRead, "BodyReadError"},
	{ErrDispatch, "DispatchError"},
}

// Kind returns the name of the error kind err belongs to, or "Unknown".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Unknown"
}
