package internal

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/hxcompose/pkg/compose"
)

// DefaultErrorHandler renders failures as HTML error pages.
//
// Composition failures get status 500 and name their kind. Errors carrying
// a status (HTTPError, timeouts) get that status. Server errors are logged
// at error level, client errors at debug.
func DefaultErrorHandler(logger *slog.Logger) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		status := StatusOf(err)
		label := compose.Kind(err)
		message := "The page could not be composed."

		var he *HTTPError
		if errors.As(err, &he) {
			label, message = he.Title, he.Detail
		} else if label == "Unknown" {
			label, message = http.StatusText(status), "The request could not be served."
		}

		if status >= http.StatusInternalServerError {
			logger.ErrorContext(r.Context(), "request failed",
				slog.Int("status", status),
				slog.String("kind", compose.Kind(err)),
				slog.String("error", err.Error()),
			)
		} else {
			logger.DebugContext(r.Context(), "request rejected",
				slog.Int("status", status),
				slog.String("error", err.Error()),
			)
		}
		compose.WriteErrorPage(w, r, status, label, message)
	}
}
