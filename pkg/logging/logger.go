// Package logging provides the process-wide structured logger for the
// simulator. The engine reports worker lifecycle at debug level, invariant
// violations at warn level and run summaries at info level; the TUI redirects
// output to a file so log lines do not tear the rendered screen.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	logger  *slog.Logger
	mu      sync.RWMutex
	logFile *os.File
	inited  bool
)

// Config holds logger configuration.
type Config struct {
	Level      slog.Level
	OutputPath string // empty for stderr, or a file path
	JSON       bool
}

// Init initializes the global logger. Calling Init twice without an
// intervening Close is an error.
func Init(config Config) error {
	mu.Lock()
	defer mu.Unlock()

	if inited {
		return fmt.Errorf("logger already initialized; call Close() first to reinitialize")
	}

	var writer io.Writer = os.Stderr
	if config.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0o750); err != nil {
			return err
		}
		file, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return err
		}
		writer = file
		logFile = file
	}

	opts := &slog.HandlerOptions{Level: config.Level}
	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	logger = slog.New(handler)
	inited = true
	return nil
}

// Close closes any open log file. Safe to call multiple times; Init may be
// called again afterwards.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if !inited {
		return nil
	}

	var err error
	if logFile != nil {
		err = logFile.Close()
		logFile = nil
	}
	logger = nil
	inited = false
	return err
}

// Get returns the current logger, initializing a stderr text logger at info
// level on first use.
func Get() *slog.Logger {
	mu.RLock()
	if inited {
		l := logger
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if !inited {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		inited = true
	}
	return logger
}

// With returns a logger with the given attributes attached, for per-component
// loggers such as the lock table or a single worker.
func With(args ...any) *slog.Logger {
	return Get().With(args...)
}

func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}
