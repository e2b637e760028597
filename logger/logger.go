package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

// Format represents the log format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Logger represents a logger instance. It is safe to log from any goroutine
// while another one changes the level, format or outputs.
type Logger struct {
	current atomic.Pointer[slog.Logger]
	level   slog.LevelVar

	mu      sync.Mutex
	writers []io.Writer
	format  Format
}

// New creates a new logger
func New(level slog.Level, format Format, writers ...io.Writer) *Logger {
	l := &Logger{
		writers: writers,
		format:  format,
	}
	l.level.Set(level)
	l.rebuildLocked()
	return l
}

// rebuildLocked swaps in a handler for the current writers and format.
// The level is shared through the LevelVar and needs no rebuild.
func (l *Logger) rebuildLocked() {
	out := io.MultiWriter(l.writers...)
	opts := &slog.HandlerOptions{Level: &l.level}
	var handler slog.Handler
	switch l.format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}
	l.current.Store(slog.New(handler).With("component", "tres-devtools"))
}

// Slog returns the slog.Logger currently backing l.
func (l *Logger) Slog() *slog.Logger {
	return l.current.Load()
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// AddOutput adds a new output destination
func (l *Logger) AddOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writers = append(l.writers, w)
	l.rebuildLocked()
}

// SetFormat changes the log format
func (l *Logger) SetFormat(format Format) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.format == format {
		return
	}
	l.format = format
	l.rebuildLocked()
}

// Rotate closes the current log file (if any) and appends to path instead.
func (l *Logger) Rotate(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var kept []io.Writer
	for _, writer := range l.writers {
		if file, ok := writer.(*os.File); ok && file != os.Stdout && file != os.Stderr {
			file.Close()
			continue
		}
		kept = append(kept, writer)
	}

	file, err := openLogFile(path)
	if err != nil {
		return err
	}
	l.writers = append(kept, file)
	l.rebuildLocked()
	return nil
}

// Close closes all file writers
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, writer := range l.writers {
		if file, ok := writer.(*os.File); ok && file != os.Stdout && file != os.Stderr {
			if err := file.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Level returns the current log level
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

func (l *Logger) Debug(msg string, args ...any) { l.Slog().Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any) { l.Slog().Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any) { l.Slog().Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.Slog().Error(msg, args...) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.Slog().DebugContext(ctx, msg, args...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.Slog().InfoContext(ctx, msg, args...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.Slog().WarnContext(ctx, msg, args...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.Slog().ErrorContext(ctx, msg, args...)
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// Init replaces the default logger. Output always goes to stderr, which keeps
// stdout free for the stdio host bridge; non-empty paths add file outputs.
func Init(level slog.Level, format Format, paths ...string) error {
	writers := []io.Writer{os.Stderr}
	for _, path := range paths {
		if path == "" {
			continue
		}
		file, err := openLogFile(path)
		if err != nil {
			return err
		}
		writers = append(writers, file)
	}

	defaultMu.Lock()
	defaultLogger = New(level, format, writers...)
	defaultMu.Unlock()
	return nil
}

// Default returns the process-wide logger.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// GetLevelFromString returns the log level from a string
func GetLevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(slog.LevelInfo, FormatText, os.Stderr)
)

// Helper functions for common logging patterns
func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}

func DebugContext(ctx context.Context, msg string, args ...any) {
	Default().DebugContext(ctx, msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	Default().InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	Default().WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	Default().ErrorContext(ctx, msg, args...)
}
