package logging

import (
	"io"
	"log/slog"
	"os"
)

// ParseLevel maps a textual level to slog, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs the process-wide default logger.
func Setup(level, service string) *slog.Logger {
	return SetupWriter(os.Stderr, level, service)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, level, service string) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})).With("service", service)

	slog.SetDefault(logger)
	return logger
}

// WithModule returns a child of the default logger tagged with module.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
