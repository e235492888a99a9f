package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/hxcompose/internal"
	"github.com/dmitrymomot/hxcompose/pkg/logger"
)

// AccessLog returns middleware that logs one line per request with the
// status, size and duration of the response.
//
// It sees the error a handler returns before the error handler renders
// it, so the logged status is the one the client will get. Server errors
// log at error level, client errors at warn, the rest at info.
func AccessLog(log *slog.Logger) internal.Middleware {
	if log == nil {
		log = logger.NewNope()
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			start := time.Now()
			rw := internal.AsResponseWriter(w)

			err := next(rw, r)

			status := rw.Status()
			if err != nil && !rw.Written() {
				status = internal.StatusOf(err)
			}
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int64("size", rw.Size()),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			log.LogAttrs(r.Context(), level, "request", attrs...)
			return err
		}
	}
}
