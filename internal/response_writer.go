package internal

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
)

// ResponseWriter records the status and size of a response. The App wraps
// every request in one; middlewares reach it with AsResponseWriter.
type ResponseWriter struct {
	http.ResponseWriter
	status  int
	size    int64
	written atomic.Bool
}

func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// AsResponseWriter returns w as a *ResponseWriter, wrapping it when needed.
func AsResponseWriter(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return NewResponseWriter(w)
}

// WriteHeader forwards only the first call.
func (w *ResponseWriter) WriteHeader(code int) {
	if w.written.Swap(true) {
		return
	}
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.written.Load() {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}

// Status is the sent status, or 200 before anything was written.
func (w *ResponseWriter) Status() int { return w.status }

func (w *ResponseWriter) Size() int64 { return w.size }

// Written reports whether the header was sent.
func (w *ResponseWriter) Written() bool { return w.written.Load() }

func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		if !w.written.Load() {
			w.WriteHeader(http.StatusOK)
		}
		f.Flush()
	}
}

func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("internal: response writer does not support hijacking")
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *ResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
