// Package smlog configures process-wide structured logging for smarttree.
// All log output goes to stderr so that stdout stays clean for the
// line-delimited JSON-RPC stream the Tool Server writes.
package smlog

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup configures the global slog default logger with the given level and
// format ("json" or anything else for text). Safe to call multiple times.
func Setup(level slog.Level, format string) {
	SetupWithWriter(level, format, os.Stderr)
}

// SetupWithWriter is Setup with an explicit writer, used by tests to capture
// log output in a buffer.
func SetupWithWriter(level slog.Level, format string, w io.Writer) {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// ResolveLevel applies the SMARTTREE_DEBUG env var, then verbose/quiet flags,
// in that priority order.
func ResolveLevel(verbose, quiet bool) slog.Level {
	if os.Getenv("SMARTTREE_DEBUG") == "1" {
		return slog.LevelDebug
	}
	if verbose {
		return slog.LevelDebug
	}
	if quiet {
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ResolveFormat reads SMARTTREE_LOG_FORMAT, defaulting to "text".
func ResolveFormat() string {
	if strings.EqualFold(os.Getenv("SMARTTREE_LOG_FORMAT"), "json") {
		return "json"
	}
	return "text"
}

// For returns a child logger tagged with the given component name.
func For(component string) *slog.Logger {
	return slog.Default().With("component", component)
}
