// Package logging wires slog to the console and to weekly rotating log files,
// and exposes package-level helpers used across the app.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Options controls logger construction
type Options struct {
	Dir            string // Empty disables file logging
	Env            string
	Level          string
	RetentionWeeks int
	MaxFileSize    int64
}

type LoggingService struct {
	Logger  *slog.Logger
	rotator *RotatingLogger
}

var DefaultLoggingService *LoggingService

// parseLogLevel maps a LOG_LEVEL value to a slog level, defaulting to info
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ConsoleLevel returns the console threshold. Tests stay quiet unless they ask for errors.
func ConsoleLevel(env, level string) slog.Level {
	if env == "test" {
		return slog.LevelError
	}
	return parseLogLevel(level)
}

// NewLoggingService builds a console text handler and, when opts.Dir is set,
// a JSON handler writing to a rotating file. Files always record debug and above.
func NewLoggingService(opts Options) *LoggingService {
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: ConsoleLevel(opts.Env, opts.Level),
	})

	if opts.Dir == "" {
		return &LoggingService{Logger: slog.New(consoleHandler)}
	}

	retention := opts.RetentionWeeks
	if retention <= 0 {
		retention = 4
	}

	rotator := NewRotatingLogger(opts.Dir, retention, opts.MaxFileSize)
	if err := rotator.open(); err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("Failed to initialize rotating logger, logging to console only", "error", err)
		return &LoggingService{Logger: logger}
	}
	rotator.startCleanup()

	fileHandler := slog.NewJSONHandler(rotator, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	return &LoggingService{
		Logger:  slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}),
		rotator: rotator,
	}
}

// Close releases the log file, if any
func (s *LoggingService) Close() error {
	if s == nil || s.rotator == nil {
		return nil
	}
	return s.rotator.Close()
}

// InitLogger initializes the global logger instance
func InitLogger(opts Options) {
	DefaultLoggingService = NewLoggingService(opts)
	slog.SetDefault(DefaultLoggingService.Logger)
}

// Close closes the global logger
func Close() error {
	return DefaultLoggingService.Close()
}

// Logger returns the global logger, or the slog default when not initialized
func Logger() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return slog.Default()
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// multiHandler fans records out to several handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}
