// Package logger provides the application's slog-based logging.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds the logger settings loaded from the config file.
type Config struct {
	// LogLevel is the minimum level to log ("debug", "info", "warn", "error").
	LogLevel string `toml:"log_level"`

	// LogFilePath is the path of the log file. Empty or "-" means stderr.
	LogFilePath string `toml:"log_file"`
}

// NewConfig creates a Config with default values.
func NewConfig() Config {
	return Config{
		LogLevel:    "info",
		LogFilePath: "",
	}
}

// Level parses the configured level string, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Open returns the writer the logger should use, plus a closer for the
// caller to defer. Stderr is returned as-is with a no-op closer.
func (c Config) Open() (io.Writer, func() error, error) {
	if c.LogFilePath == "" || c.LogFilePath == "-" {
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(c.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file '%s': %w", c.LogFilePath, err)
	}
	return f, f.Close, nil
}
