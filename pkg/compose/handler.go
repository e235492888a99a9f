package compose

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/hxcompose/pkg/dispatch"
	"github.com/dmitrymomot/hxcompose/pkg/logger"
)

// ErrorRenderer writes the response for a failed dispatch.
type ErrorRenderer func(w http.ResponseWriter, r *http.Request, err error)

// Handler serves a Dispatcher, usually a Composer, over HTTP.
type Handler struct {
	d       dispatch.Dispatcher
	onError ErrorRenderer
	logger  *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithErrorRenderer replaces RenderError.
func WithErrorRenderer(fn ErrorRenderer) HandlerOption {
	return func(h *Handler) {
		if fn != nil {
			h.onError = fn
		}
	}
}

// WithHandlerLogger sets the logger for failures that happen after the
// response header was sent.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler returns a Handler for d.
func NewHandler(d dispatch.Dispatcher, opts ...HandlerOption) *Handler {
	h := &Handler{
		d:       d,
		onError: RenderError,
		logger:  logger.NewNope(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP never fails: errors before the header is sent are rendered by
// the error renderer, later ones are logged.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started, err := h.serve(w, r)
	if err == nil {
		return
	}
	if !started {
		h.onError(w, r, err)
		return
	}
	h.logger.WarnContext(r.Context(), "response body copy failed",
		slog.String("kind", Kind(err)),
		slog.Any("error", err),
	)
}

// Serve is the error-returning form of ServeHTTP. A returned error means
// nothing was written unless the header was already sent.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) error {
	_, err := h.serve(w, r)
	return err
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) (bool, error) {
	if err := h.d.Ready(r.Context()); err != nil {
		return false, fmt.Errorf("%w: %w", ErrDispatch, err)
	}
	resp, err := h.d.Dispatch(r)
	if err != nil {
		return false, err
	}
	if resp.Body == nil {
		resp.Body = http.NoBody
	}
	defer resp.Body.Close()

	dst := w.Header()
	for k, v := range resp.Header {
		dst[k] = v
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		return true, fmt.Errorf("%w: %w", ErrBodyRead, err)
	}
	return true, nil
}
