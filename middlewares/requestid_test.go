package middlewares_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hxcompose/middlewares"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	run := func(t *testing.T, req *http.Request, opts ...middlewares.RequestIDOption) (*httptest.ResponseRecorder, string) {
		t.Helper()
		rec := httptest.NewRecorder()
		var got string
		err := middlewares.RequestID(opts...)(func(_ http.ResponseWriter, r *http.Request) error {
			got = middlewares.GetRequestID(r.Context())
			return nil
		})(rec, req)
		require.NoError(t, err)
		return rec, got
	}

	t.Run("generates a ulid when not present", func(t *testing.T) {
		t.Parallel()

		rec, got := run(t, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Len(t, got, 26)
		require.Equal(t, got, rec.Header().Get("X-Request-ID"))
	})

	t.Run("reuses the incoming header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "corr-1")
		rec, got := run(t, req)
		require.Equal(t, "corr-1", got)
		require.Equal(t, "corr-1", rec.Header().Get("X-Request-ID"))
	})

	t.Run("oversized incoming ids are replaced", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("a", 129))
		_, got := run(t, req)
		require.Len(t, got, 26)
	})

	t.Run("custom headers are checked in order", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Trace", "trace-1")
		req.Header.Set("X-Flow-Id", "flow-1")
		_, got := run(t, req, middlewares.WithRequestIDHeaders("X-Flow-Id", "X-Trace"))
		require.Equal(t, "flow-1", got)

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Trace", "trace-1")
		_, got = run(t, req, middlewares.WithRequestIDHeaders("X-Flow-Id", "X-Trace"))
		require.Equal(t, "trace-1", got)
	})

	t.Run("custom generator and response header", func(t *testing.T) {
		t.Parallel()

		rec, got := run(t, httptest.NewRequest(http.MethodGet, "/", nil),
			middlewares.WithRequestIDGenerator(func() string { return "fixed" }),
			middlewares.WithRequestIDResponseHeader("X-Flow-Id"),
		)
		require.Equal(t, "fixed", got)
		require.Equal(t, "fixed", rec.Header().Get("X-Flow-Id"))
		require.Empty(t, rec.Header().Get("X-Request-ID"))
	})
}

func TestGetRequestID(t *testing.T) {
	t.Parallel()

	t.Run("returns empty string when no request ID set", func(t *testing.T) {
		t.Parallel()
		require.Empty(t, middlewares.GetRequestID(context.Background()))
	})

	t.Run("round trips through the context", func(t *testing.T) {
		t.Parallel()
		ctx := middlewares.WithRequestID(context.Background(), "abc")
		require.Equal(t, "abc", middlewares.GetRequestID(ctx))
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	extract := middlewares.RequestIDExtractor()

	t.Run("returns attribute when request ID present", func(t *testing.T) {
		t.Parallel()

		attr, ok := extract(middlewares.WithRequestID(context.Background(), "abc"))
		require.True(t, ok)
		require.Equal(t, slog.String("request_id", "abc"), attr)
	})

	t.Run("returns false when request ID is missing or empty", func(t *testing.T) {
		t.Parallel()

		_, ok := extract(context.Background())
		require.False(t, ok)
		_, ok = extract(middlewares.WithRequestID(context.Background(), ""))
		require.False(t, ok)
	})
}
