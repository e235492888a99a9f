package internal

import (
	"errors"
	"net/http"
)

// HTTPError is a failure with a status code. Detail is shown to users;
// Err is for logs only.
type HTTPError struct {
	Err    error
	Title  string
	Detail string
	Code   int
}

// NewHTTPError returns an HTTPError whose title defaults to the status text.
func NewHTTPError(code int, detail string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Title: http.StatusText(code), Detail: detail}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return e.Title + ": " + e.Detail
	}
	return e.Title
}

func (e *HTTPError) Unwrap() error { return e.Err }

func (e *HTTPError) StatusCode() int { return e.Code }

type HTTPErrorOption func(*HTTPError)

func WithTitle(title string) HTTPErrorOption {
	return func(e *HTTPError) { e.Title = title }
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) { e.Err = err }
}

func ErrNotFound(detail string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, detail, opts...)
}

func ErrBadGateway(detail string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadGateway, detail, opts...)
}

func ErrServiceUnavailable(detail string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, detail, opts...)
}

// StatusOf returns the status carried by err or any error it wraps, via a
// StatusCode() int method. Other errors map to 500.
func StatusOf(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= 400 && code <= 599 {
			return code
		}
	}
	return http.StatusInternalServerError
}
