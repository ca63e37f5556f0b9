// Package logging defines the structured-logging interface used across
// jobkeeper, with implementations over log/slog and zerolog.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "jobs fetched", "count", n, "source", url)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Log formats accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds the logger used by the CLI: a zerolog console writer, or slog
// JSON lines when format is "json". Unknown levels fall back to info.
func New(w io.Writer, level, format string) Logger {
	level = strings.ToLower(strings.TrimSpace(level))
	if strings.EqualFold(strings.TrimSpace(format), FormatJSON) {
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel(level)})
		return NewSlogLogger(slog.New(h))
	}
	return NewZerologConsole(w, level)
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return NewZerologLogger(zerologNop())
}
