// Package logging wires up sunbeam-migrate's structured logger: slog
// fanned out to a rotating file (lumberjack) and/or the console, per the
// log_level/log_dir/log_console configuration options.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var def *slog.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Default returns the process-wide logger installed by the last New() call,
// or a stderr fallback before New has been called.
func Default() *slog.Logger { return def }

// New builds a logger per the given level/dir/console settings and installs
// it as the process-wide default. level is one of debug/info/warning/error.
func New(level string, logDir string, console bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var writers []io.Writer
	if console {
		writers = append(writers, os.Stderr)
	}
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log dir %s: %w", logDir, err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "sunbeam-migrate.log"),
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	l := slog.New(slog.NewTextHandler(io.MultiWriter(writers...), opts))
	def = l
	return l, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
