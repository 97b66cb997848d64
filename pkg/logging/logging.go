// Package logging configures the process wide slog logger of the commands.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup builds a logger writing to stderr and makes it the default one.
// LOG_LEVEL (debug, info, warn, error) and LOG_FORMAT (text, json) override the defaults of
// info level JSON, or debug level text when debug is set.
func Setup(debug bool) *slog.Logger {
	l := New(os.Stderr, debug, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	slog.SetDefault(l)
	return l
}

// New builds a logger writing to w
func New(w io.Writer, debug bool, level, format string) *slog.Logger {
	lvl := slog.LevelInfo
	if debug {
		lvl = slog.LevelDebug
	}
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	json := !debug
	switch strings.ToLower(format) {
	case "json":
		json = true
	case "text":
		json = false
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
