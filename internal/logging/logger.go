// Package logging configures structured logging via log/slog.
//
// All log output goes to stderr: the export command may write its TSV to
// stdout, and diagnostics must never interleave with dictionary lines.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewRunLogger returns a logger tagged with a fresh run ID and the command
// name. Every line of one invocation carries the same run_id, so interleaved
// cron output stays attributable.
func NewRunLogger(command string) *slog.Logger {
	return slog.Default().With(
		"run_id", uuid.NewString(),
		"command", command,
	)
}
