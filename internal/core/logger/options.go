package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format represents the output format for logs
type Format string

const (
	// FormatText outputs human-readable text format
	FormatText Format = "text"
	// FormatJSON outputs structured JSON format
	FormatJSON Format = "json"
)

// config holds the logger configuration
type config struct {
	level  slog.Level
	output io.Writer
	format Format
}

// Option is a function that configures a logger
type Option func(*config)

// WithLevel sets the minimum log level
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithOutput sets the output writer for logs
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		c.output = w
	}
}

// WithFormat sets the output format
func WithFormat(format Format) Option {
	return func(c *config) {
		c.format = format
	}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error")
// to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", name)
	}
}
