package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hxcompose/pkg/health"
)

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("healthy without checks", func(t *testing.T) {
		t.Parallel()

		rep := health.Run(context.Background(), nil)
		require.True(t, rep.Healthy())
		require.Empty(t, rep.Checks)
	})

	t.Run("one failing check marks the report unhealthy", func(t *testing.T) {
		t.Parallel()

		rep := health.Run(context.Background(), health.Checks{
			"ok":   func(context.Context) error { return nil },
			"down": func(context.Context) error { return errors.New("refused") },
		})
		require.False(t, rep.Healthy())
		require.Equal(t, health.StatusHealthy, rep.Checks["ok"].Status)
		require.Equal(t, health.StatusUnhealthy, rep.Checks["down"].Status)
		require.Equal(t, "refused", rep.Checks["down"].Error)
	})

	t.Run("checks share the deadline", func(t *testing.T) {
		t.Parallel()

		rep := health.Run(context.Background(), health.Checks{
			"slow": func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		}, health.WithTimeout(10*time.Millisecond))
		require.False(t, rep.Healthy())
		require.Contains(t, rep.Checks["slow"].Error, "deadline")
	})
}

func TestHTTPCheck(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	t.Run("client errors count as reachable", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, health.HTTPCheck(srv.Client(), srv.URL+"/")(context.Background()))
	})

	t.Run("server errors fail", func(t *testing.T) {
		t.Parallel()
		require.Error(t, health.HTTPCheck(srv.Client(), srv.URL+"/broken")(context.Background()))
	})
}

func TestHandlers(t *testing.T) {
	t.Parallel()

	t.Run("liveness answers OK", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		health.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "OK", rec.Body.String())
	})

	t.Run("readiness answers 503 with json details", func(t *testing.T) {
		t.Parallel()

		h := health.ReadinessHandler(health.Checks{
			"redis": func(context.Context) error { return errors.New("no route") },
		})
		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		h(rec, req)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var rep health.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
		require.Equal(t, health.StatusUnhealthy, rep.Status)
		require.Equal(t, "no route", rep.Checks["redis"].Error)
	})

	t.Run("format query selects json", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		health.ReadinessHandler(nil)(rec, httptest.NewRequest(http.MethodGet, "/health/ready?format=json", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	})
}
