package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/ar0311/identity-docstore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"upper case", "DEBUG", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"unknown defaults to info", "verbose", slog.LevelInfo},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseLevel(tc.input))
		})
	}
}

// TestSetupWithWriter is not parallel: Setup replaces slog.Default.
func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	t.Run("json output filters below level", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := SetupWithWriter(config.LogConfig{Level: "warn", Format: "json"}, &buf)
		require.NoError(t, err)
		require.NotNil(t, l)

		l.Info("hidden")
		l.Warn("shown", slog.String("component", "test"))

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"msg":"shown"`)
		assert.Contains(t, buf.String(), `"component":"test"`)
		assert.Same(t, l, slog.Default(), "Setup installs the logger as default")
	})

	t.Run("text output", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := SetupWithWriter(config.LogConfig{Level: "debug", Format: "text"}, &buf)
		require.NoError(t, err)

		l.Debug("hello", "k", "v")
		assert.Contains(t, buf.String(), "msg=hello")
		assert.Contains(t, buf.String(), "k=v")
	})
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	scoped, buf := GetTestLogger(t)
	fallback, fallbackBuf := GetTestLogger(t)

	ctx := WithLogger(context.Background(), scoped)
	FromContextOrDefault(ctx, fallback).Info("scoped message")
	FromContextOrDefault(context.Background(), fallback).Info("fallback message")

	AssertLogContains(t, buf, "scoped message")
	AssertLogContains(t, fallbackBuf, "fallback message")
	assert.NotContains(t, buf.String(), "fallback message")

	assert.Same(t, scoped, FromContext(ctx))
	assert.NotNil(t, FromContextOrDefault(context.Background(), nil), "nil fallback yields slog.Default")
}

func TestTestLogBuffer(t *testing.T) {
	t.Parallel()

	l, buf := GetTestLogger(t)
	l.Info("first", slog.String("component", "user_store"))
	l.Warn("second")

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0]["msg"])
	assert.Len(t, buf.WithMessage("second"), 1)
	assert.Empty(t, buf.WithMessage("third"))

	AssertLogField(t, buf, "first", "component", "user_store")
	AssertNoErrorLogs(t, buf)

	buf.Reset()
	assert.Empty(t, buf.String())
}
