package middlewares_test

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hxcompose/internal"
	"github.com/dmitrymomot/hxcompose/middlewares"
)

func TestAccessLog(t *testing.T) {
	t.Parallel()

	serve := func(t *testing.T, h internal.HandlerFunc) slog.Record {
		t.Helper()
		log, records := newRecordLogger()
		_ = middlewares.AccessLog(log)(h)(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/docs?x=1", nil))
		logged := records.all()
		require.Len(t, logged, 1)
		return logged[0]
	}

	t.Run("logs status size and path", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, okHandler)
		require.Equal(t, slog.LevelInfo, rec.Level)
		a := attrs(rec)
		require.Equal(t, int64(http.StatusOK), a["status"].Int64())
		require.Equal(t, int64(2), a["size"].Int64())
		require.Equal(t, "/docs", a["path"].String())
		require.Equal(t, http.MethodGet, a["method"].String())
		require.Contains(t, a, "duration")
		require.NotContains(t, a, "error")
	})

	t.Run("uses the status of an unrendered error", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, func(http.ResponseWriter, *http.Request) error {
			return internal.ErrNotFound("")
		})
		require.Equal(t, slog.LevelWarn, rec.Level)
		require.Equal(t, int64(http.StatusNotFound), attrs(rec)["status"].Int64())
	})

	t.Run("server errors log at error level", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, func(http.ResponseWriter, *http.Request) error {
			return errors.New("boom")
		})
		require.Equal(t, slog.LevelError, rec.Level)
		a := attrs(rec)
		require.Equal(t, int64(http.StatusInternalServerError), a["status"].Int64())
		require.Equal(t, "boom", a["error"].String())
	})

	t.Run("written status wins over a late error", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, func(w http.ResponseWriter, _ *http.Request) error {
			w.WriteHeader(http.StatusAccepted)
			return errors.New("copy failed")
		})
		require.Equal(t, int64(http.StatusAccepted), attrs(rec)["status"].Int64())
	})
}
