package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hxcompose/pkg/logger"
)

type ctxKey struct{}

func extractValue(ctx context.Context) (slog.Attr, bool) {
	v, ok := ctx.Value(ctxKey{}).(string)
	if !ok {
		return slog.Attr{}, false
	}
	return slog.String("value", v), true
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json records carry extracted attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.Config{Output: &buf}, extractValue, nil)

		ctx := context.WithValue(context.Background(), ctxKey{}, "abc")
		log.InfoContext(ctx, "composed", slog.Int("size", 3))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		require.Equal(t, "composed", rec["msg"])
		require.Equal(t, "abc", rec["value"])
		require.EqualValues(t, 3, rec["size"])
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.Config{Output: &buf, Level: "warn", Format: logger.FormatText})

		log.Info("hidden")
		log.Warn("shown")
		require.NotContains(t, buf.String(), "hidden")
		require.True(t, strings.Contains(buf.String(), "msg=shown"))
	})

	t.Run("debug level enables debug records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.Config{Output: &buf, Level: "DEBUG"})
		log.Debug("fragment resolved")
		require.Contains(t, buf.String(), "fragment resolved")
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"debug":   slog.LevelDebug,
		" Warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := logger.ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := logger.ParseLevel("verbose")
	require.Error(t, err)
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	require.NotPanics(t, func() {
		logger.NewNope().Error("discarded")
	})
}
