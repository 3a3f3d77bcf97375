package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// newLogger creates the CLI's logger. An empty level discards everything.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	if strings.TrimSpace(level) == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil
	}

	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parsed})), nil
}
