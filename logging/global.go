// Package logging sets up structured logging for the service: human-readable lines on the console,
// JSON lines in weekly rotating files, and a chi middleware that records every request.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/giygas/narratives-api/config"
)

// LoggingService owns the process logger and the file it writes to
type LoggingService struct {
	Logger         *slog.Logger
	rotatingLogger *RotatingLogger
}

var DefaultLoggingService *LoggingService

// Options controls InitLogger
type Options struct {
	Env            config.Environment
	Level          string
	RetentionWeeks int
	MaxFileSize    int64
	Verbose        bool      // keep console output in tests
	Console        io.Writer // console destination, stdout when nil
}

// InitLogger initializes the global logger instance. An empty logDir logs to the console only.
func InitLogger(logDir string, opts Options) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{
		Level: GetConsoleLogLevel(opts.Env, opts.Level, opts.Verbose),
	})

	service := &LoggingService{}

	if logDir == "" {
		service.Logger = slog.New(consoleHandler)
	} else {
		rl, err := NewRotatingLogger(logDir, opts.RetentionWeeks, opts.MaxFileSize)
		if err != nil {
			service.Logger = slog.New(consoleHandler)
			service.Logger.Error("Failed to initialize rotating logger, logging to console only", "error", err)
		} else {
			fileHandler := slog.NewJSONHandler(rl, &slog.HandlerOptions{
				Level: GetFileLogLevel(),
			})
			service.rotatingLogger = rl
			service.Logger = slog.New(newFanoutHandler(consoleHandler, fileHandler))
		}
	}

	DefaultLoggingService = service
	slog.SetDefault(service.Logger)
}

// Close flushes and closes the log file, if any
func Close() error {
	if DefaultLoggingService == nil || DefaultLoggingService.rotatingLogger == nil {
		return nil
	}
	return DefaultLoggingService.rotatingLogger.Close()
}

// DefaultRotatingLogger returns the file writer of the default service, nil when logging to console only
func DefaultRotatingLogger() *RotatingLogger {
	if DefaultLoggingService == nil {
		return nil
	}
	return DefaultLoggingService.rotatingLogger
}

// parseLogLevel maps a LOG_LEVEL value to a slog level, info when unrecognized
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// GetConsoleLogLevel picks the console level. Tests stay quiet unless verbose,
// staging and prod default to warn, an explicit LOG_LEVEL overrides outside tests.
func GetConsoleLogLevel(env config.Environment, levelStr string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if levelStr != "" {
		return parseLogLevel(levelStr)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel returns the file level; files keep everything
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

// Package-level functions for direct access

func logger() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return DefaultLoggingService.Logger
}

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
