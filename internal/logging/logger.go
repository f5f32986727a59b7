package logging

import (
	"io"
	"log/slog"
	"os"
	"sort"
)

// Logger wraps slog.Logger with a few helpers used across the service.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a logger writing to stdout.
// Development uses human-readable text at debug level; otherwise JSON at info level.
func NewLogger(isDev bool) *Logger {
	return New(os.Stdout, isDev)
}

// New creates a logger writing to w.
func New(w io.Writer, isDev bool) *Logger {
	var handler slog.Handler
	if isDev {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	return &Logger{Logger: slog.New(handler)}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// WithFields returns a child logger carrying the given attributes.
// Keys are added in sorted order so output is stable.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}

	return &Logger{Logger: l.With(args...)}
}
