package internal_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hxcompose/internal"
	"github.com/dmitrymomot/hxcompose/pkg/compose"
)

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestApp_Content(t *testing.T) {
	t.Parallel()

	t.Run("serves unmatched paths with the content handler", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithContent(func(w http.ResponseWriter, r *http.Request) error {
			_, err := io.WriteString(w, "page "+r.URL.Path)
			return err
		}))

		rec := serve(t, app.Handler(), http.MethodGet, "/docs/intro")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "page /docs/intro", rec.Body.String())
	})

	t.Run("renders composition errors as a 500 page", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithContent(func(http.ResponseWriter, *http.Request) error {
			return fmt.Errorf("%w: %w", compose.ErrURIConstruction, errors.New("bad"))
		}))

		rec := serve(t, app.Handler(), http.MethodGet, "/")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), "500 Internal Server Error")
		require.Contains(t, rec.Body.String(), "URIConstructionError")
		require.NotContains(t, rec.Body.String(), "bad")
	})

	t.Run("uses the status of http errors", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithContent(func(http.ResponseWriter, *http.Request) error {
			return internal.ErrServiceUnavailable("Try again later.")
		}))

		rec := serve(t, app.Handler(), http.MethodGet, "/")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Contains(t, rec.Body.String(), "Try again later.")
	})

	t.Run("does not render over a started response", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithContent(func(w http.ResponseWriter, _ *http.Request) error {
			_, _ = io.WriteString(w, "partial")
			return errors.New("copy failed")
		}))

		rec := serve(t, app.Handler(), http.MethodGet, "/")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "partial", rec.Body.String())
	})

	t.Run("returns 404 without a content handler", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, internal.New().Handler(), http.MethodGet, "/missing")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Contains(t, rec.Body.String(), "404 Not Found")
	})
}

func TestApp_Middleware(t *testing.T) {
	t.Parallel()

	var order []string
	trace := func(name string) internal.Middleware {
		return func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) error {
				order = append(order, name)
				err := next(w, r)
				if err != nil {
					order = append(order, name+" saw "+err.Error())
				}
				return err
			}
		}
	}

	app := internal.New(
		internal.WithMiddleware(trace("outer"), trace("inner")),
		internal.WithContent(func(http.ResponseWriter, *http.Request) error {
			return errors.New("boom")
		}),
	)

	rec := serve(t, app.Handler(), http.MethodGet, "/")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, []string{"outer", "inner", "inner saw boom", "outer saw boom"}, order)
}

func TestApp_Routes(t *testing.T) {
	t.Parallel()

	assets := fstest.MapFS{"public/app.css": {Data: []byte("body{}")}}
	app := internal.New(
		internal.WithHealthChecks(
			internal.WithReadinessCheck("ok", func(context.Context) error { return nil }),
			internal.WithReadinessCheck("down", func(context.Context) error { return errors.New("down") }),
		),
		internal.WithMetrics("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "hxcompose_up 1")
		})),
		internal.WithMount("/pages", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "mounted "+r.URL.Path)
		})),
		internal.WithStaticFiles("/static/", assets, "public"),
	)
	h := app.Handler()

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, h, http.MethodGet, "/health/live")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("readiness reports failing checks", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, h, http.MethodGet, "/health/ready?format=json")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Contains(t, rec.Body.String(), `"down"`)
	})

	t.Run("metrics", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, h, http.MethodGet, "/metrics")
		require.Equal(t, "hxcompose_up 1", rec.Body.String())
	})

	t.Run("mount", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, h, http.MethodGet, "/pages/a")
		require.Equal(t, "mounted /pages/a", rec.Body.String())
	})

	t.Run("static files", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, h, http.MethodGet, "/static/app.css")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "body{}", rec.Body.String())
		require.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	})

	t.Run("static directory listing is hidden", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, h, http.MethodGet, "/static/")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, h, http.MethodPost, "/health/live")
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		require.Contains(t, rec.Body.String(), "405 Method Not Allowed")
	})
}
