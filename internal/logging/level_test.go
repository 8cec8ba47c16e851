package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/saveconnectd/internal/errors"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLevel_Invalid(t *testing.T) {
	_, err := ParseLevel("verbose")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "verbose")

	_, err = ParseLevel("")
	assert.True(t, errors.IsInvalidInput(err))
}

func TestSetLevel(t *testing.T) {
	prev := Level.Level()
	t.Cleanup(func() { Level.Set(prev) })

	name, err := SetLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, "warn", name)
	assert.Equal(t, slog.LevelWarn, Level.Level())
	assert.Equal(t, "warn", CurrentLevel())

	_, err = SetLevel("nope")
	require.Error(t, err)
	assert.Equal(t, slog.LevelWarn, Level.Level(), "an invalid level must not change the active one")
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "debug", LevelName(slog.LevelDebug-4))
	assert.Equal(t, "debug", LevelName(slog.LevelDebug))
	assert.Equal(t, "info", LevelName(slog.LevelInfo))
	assert.Equal(t, "warn", LevelName(slog.LevelWarn))
	assert.Equal(t, "error", LevelName(slog.LevelError))
	assert.Equal(t, "error", LevelName(slog.LevelError+4))
}
