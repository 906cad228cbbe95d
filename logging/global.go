// Package logging wires log/slog for the catalog: human readable text on the
// console, JSON records in weekly rotating files.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/giygas/medication-catalog/config"
)

// Options configures InitLoggerWithOptions.
type Options struct {
	Dir            string
	RetentionWeeks int
	MaxFileSize    int64
	Env            config.Environment
	Level          string
	Verbose        bool
	Console        io.Writer // defaults to os.Stdout
}

type LoggingService struct {
	Logger   *slog.Logger
	Rotating *RotatingLogger
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger with default options
func InitLogger(logDir string) {
	InitLoggerWithOptions(Options{Dir: logDir, RetentionWeeks: 4, MaxFileSize: 100 * 1024 * 1024})
}

// InitLoggerWithOptions builds the global logger. An empty Dir logs to the
// console only.
func InitLoggerWithOptions(opts Options) *LoggingService {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(console, &slog.HandlerOptions{
			Level: GetConsoleLogLevel(opts.Env, opts.Level, opts.Verbose),
		}),
	}

	var rotating *RotatingLogger
	if opts.Dir != "" {
		rotating = NewRotatingLogger(opts.Dir, opts.RetentionWeeks, opts.MaxFileSize)
		handlers = append(handlers, slog.NewJSONHandler(rotating, &slog.HandlerOptions{
			Level: GetFileLogLevel(),
		}))
	}

	svc := &LoggingService{
		Logger:   slog.New(&multiHandler{handlers: handlers}),
		Rotating: rotating,
	}

	if DefaultLoggingService != nil {
		_ = DefaultLoggingService.Close()
	}
	DefaultLoggingService = svc
	slog.SetDefault(svc.Logger)
	return svc
}

// Close releases the log file, if any.
func (s *LoggingService) Close() error {
	if s == nil || s.Rotating == nil {
		return nil
	}
	return s.Rotating.Close()
}

// CleanupOldLogs removes expired log files of the global logger.
func CleanupOldLogs() (int, error) {
	if DefaultLoggingService == nil || DefaultLoggingService.Rotating == nil {
		return 0, nil
	}
	return DefaultLoggingService.Rotating.Cleanup()
}

// logger returns the global logger, or a console fallback before init.
func logger() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return DefaultLoggingService.Logger
}

// DefaultLogger returns the global logger, falling back to stderr before
// InitLoggerWithOptions runs.
func DefaultLogger() *slog.Logger {
	return logger()
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	logger().Debug(msg, args...)
}
