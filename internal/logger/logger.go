// Package logger sends structured logs to a file. A full-screen TUI owns the
// terminal, so nothing may be written to stdout or stderr while it runs.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var logFile *os.File

// DefaultPath is the log location used when none is configured.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), "hkm.log")
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Init opens path for appending and installs it as the default slog output.
// An empty path discards all logs.
func Init(path, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if path == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := tea.LogToFile(path, "hkm")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = f
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl})))
	slog.Debug("logger initialized", "path", path, "level", lvl)
	return nil
}

// Close flushes and closes the log file.
func Close() {
	if logFile != nil {
		_ = logFile.Sync()
		_ = logFile.Close()
		logFile = nil
	}
}
