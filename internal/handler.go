package internal

import "net/http"

// HandlerFunc serves a request and reports failure by returning an error.
// A non-nil error reaches the App's ErrorHandler unless the response was
// already started.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Middleware wraps a HandlerFunc.
//
//	func Auth(next internal.HandlerFunc) internal.HandlerFunc {
//		return func(w http.ResponseWriter, r *http.Request) error {
//			if r.Header.Get("Authorization") == "" {
//				return internal.NewHTTPError(http.StatusUnauthorized, "")
//			}
//			return next(w, r)
//		}
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler writes the response for an error returned by a handler.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Chain wraps h so the first middleware is the outermost.
func Chain(h HandlerFunc, mws ...Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// FromHTTP adapts a plain handler; it never returns an error.
func FromHTTP(h http.Handler) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		h.ServeHTTP(w, r)
		return nil
	}
}
