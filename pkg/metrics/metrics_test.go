package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hxcompose/pkg/metrics"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	t.Run("records compositions and sub-requests", func(t *testing.T) {
		t.Parallel()

		m := metrics.New()
		m.Composition(metrics.OutcomeRewritten, 1, time.Now())
		m.Composition(metrics.OutcomeRewritten, 2, time.Now())
		m.Failure("RecursionLimitExceeded")
		m.Subrequest(http.StatusOK)
		m.Subrequest(http.StatusNotFound)
		m.CacheLookup("markdown", true)

		out := scrape(t, m)
		require.Contains(t, out, `hxcompose_compose_total{outcome="rewritten"} 2`)
		require.Contains(t, out, `hxcompose_compose_error_total{kind="RecursionLimitExceeded"} 1`)
		require.Contains(t, out, `hxcompose_subrequest_total{code="200"} 1`)
		require.Contains(t, out, `hxcompose_subrequest_total{code="404"} 1`)
		require.Contains(t, out, `hxcompose_cache_lookup_total{result="hit",source="markdown"} 1`)
	})

	t.Run("custom namespace", func(t *testing.T) {
		t.Parallel()

		m := metrics.New(metrics.WithNamespace("site"))
		m.Subrequest(http.StatusOK)
		require.Contains(t, scrape(t, m), `site_subrequest_total{code="200"} 1`)
	})

	t.Run("nil metrics record nothing", func(t *testing.T) {
		t.Parallel()

		var m *metrics.Metrics
		require.NotPanics(t, func() {
			m.Composition(metrics.OutcomeFailed, 0, time.Now())
			m.Failure("x")
			m.Subrequest(http.StatusOK)
			m.CacheLookup("s", false)
		})

		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
