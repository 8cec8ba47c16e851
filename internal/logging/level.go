// Package logging holds the process wide log level so it can be changed at
// runtime from the HTTP API or a config file reload.
package logging

import (
	"log/slog"
	"strings"

	"github.com/jmylchreest/saveconnectd/internal/errors"
)

// Level is shared by every handler built through utils.SetupLogger.
var Level = new(slog.LevelVar)

// ParseLevel maps a level name to a slog.Level. "warning" is accepted as an
// alias for "warn".
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.InvalidInputf("invalid log level %q; must be debug, info, warn, or error", name)
	}
}

// SetLevel validates name and applies it to Level.
func SetLevel(name string) (string, error) {
	lvl, err := ParseLevel(name)
	if err != nil {
		return "", err
	}
	Level.Set(lvl)
	return LevelName(lvl), nil
}

// CurrentLevel returns the name of the active level.
func CurrentLevel() string {
	return LevelName(Level.Level())
}

// LevelName converts a slog.Level to its config name.
func LevelName(level slog.Level) string {
	switch {
	case level <= slog.LevelDebug:
		return "debug"
	case level <= slog.LevelInfo:
		return "info"
	case level <= slog.LevelWarn:
		return "warn"
	default:
		return "error"
	}
}
