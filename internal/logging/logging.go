// Package logging builds the diagnostic logger used by the tools.
//
// Diagnostics go to stderr; the progress report printed by each command goes to stdout and is not logged.
package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/jamespfennell/gtfstools/warnings"
)

// NewLogger creates a text logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// LogError logs an error with structured context.
func LogError(logger *slog.Logger, message string, err error, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.String("error", err.Error()))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	logger.Error(message, args...)
}

// LogWarnings logs each warning at the given level, tagged with the file it was found in.
func LogWarnings(logger *slog.Logger, level slog.Level, ws []warnings.StaticWarning) {
	if logger == nil {
		return
	}
	for _, w := range ws {
		logger.Log(context.Background(), level, w.Error(), slog.String("file", string(w.File())))
	}
}

// SafeClose closes a resource and logs any error that occurs.
func SafeClose(closer io.Closer, logger *slog.Logger, operation string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		LogError(logger, "failed to close resource", err, slog.String("operation", operation))
	}
}
