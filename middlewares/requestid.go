package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/hxcompose/internal"
	"github.com/dmitrymomot/hxcompose/pkg/id"
	"github.com/dmitrymomot/hxcompose/pkg/logger"
)

// DefaultRequestIDHeaders are checked in order for an ID set by a proxy.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Request-Id", "X-Correlation-ID"}

// maxRequestIDLen caps IDs taken from clients; longer values are replaced.
const maxRequestIDLen = 128

type requestIDKey struct{}

// RequestIDConfig configures RequestID.
type RequestIDConfig struct {
	Generator      func() string
	ResponseHeader string
	Headers        []string
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(c *RequestIDConfig) { c.Headers = headers }
}

// WithRequestIDGenerator replaces the ULID generator.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(c *RequestIDConfig) { c.Generator = gen }
}

func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(c *RequestIDConfig) { c.ResponseHeader = header }
}

// RequestID tags each request with an ID, reusing one from the incoming
// headers when present. The ID goes into the context, where fragment
// sub-requests inherit it, and into the response header.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      id.NewULID,
		ResponseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			rid := incomingRequestID(r, cfg.Headers)
			if rid == "" {
				rid = cfg.Generator()
			}
			w.Header().Set(cfg.ResponseHeader, rid)
			return next(w, r.WithContext(WithRequestID(r.Context(), rid)))
		}
	}
}

func incomingRequestID(r *http.Request, headers []string) string {
	for _, h := range headers {
		if v := r.Header.Get(h); v != "" {
			if len(v) > maxRequestIDLen {
				return ""
			}
			return v
		}
	}
	return ""
}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the ID stored by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// RequestIDExtractor adds request_id to log records.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		v := GetRequestID(ctx)
		return slog.String("request_id", v), v != ""
	}
}
