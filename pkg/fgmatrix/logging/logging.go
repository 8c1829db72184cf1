package logging

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger constructs a slog logger writing to stderr from level/format inputs.
func NewLogger(level, format string) (*slog.Logger, error) {
	return NewLoggerTo(os.Stderr, level, format)
}

// NewLoggerTo is NewLogger with an explicit destination.
func NewLoggerTo(w io.Writer, level, format string) (*slog.Logger, error) {
	var loglevel slog.Level
	if err := loglevel.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	opts := slog.HandlerOptions{
		Level: loglevel,
	}
	logger := slog.New(slog.NewTextHandler(w, &opts))
	if format == "json" {
		logger = slog.New(slog.NewJSONHandler(w, &opts))
	}

	return logger, nil
}
