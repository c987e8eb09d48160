// Package logging sets up the application's structured loggers.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var structuredLogger *slog.Logger
var humanReadableLogger *slog.Logger

const (
	LevelFatal = slog.Level(12)
)

var levelNames = map[slog.Leveler]string{
	LevelFatal: "FATAL",
}

// replaceLevelNames customizes level names beyond the slog defaults.
func replaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		levelLabel, exists := levelNames[level]
		if !exists {
			levelLabel = level.String()
		}
		a.Value = slog.StringValue(levelLabel)
	}
	return a
}

// Init initializes the logging system with structured and human-readable loggers.
// It configures JSON output for structured logs and Text output for human-readable logs.
func Init() {
	structuredHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceLevelNames,
	})
	structuredLogger = slog.New(structuredHandler)

	humanReadableHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		ReplaceAttr: replaceLevelNames,
	})
	humanReadableLogger = slog.New(humanReadableHandler)

	slog.SetDefault(humanReadableLogger)
}

// Structured returns the structured (JSON) logger, initializing on first use.
func Structured() *slog.Logger {
	if structuredLogger == nil {
		Init()
	}
	return structuredLogger
}

// HumanReadable returns the human-readable (text) logger.
func HumanReadable() *slog.Logger {
	if humanReadableLogger == nil {
		Init()
	}
	return humanReadableLogger
}

// ForService returns a structured logger tagged with the given service name.
func ForService(serviceName string) *slog.Logger {
	return Structured().With("service", serviceName)
}

// Debug logs at debug level using the human-readable logger.
func Debug(msg string, args ...any) {
	HumanReadable().Debug(msg, args...)
}

// Info logs at info level using the human-readable logger.
func Info(msg string, args ...any) {
	HumanReadable().Info(msg, args...)
}

// Warn logs at warn level using the human-readable logger.
func Warn(msg string, args ...any) {
	HumanReadable().Warn(msg, args...)
}

// Error logs at error level using the human-readable logger.
func Error(msg string, args ...any) {
	HumanReadable().Error(msg, args...)
}

// Fatal logs at fatal level and exits the process.
func Fatal(msg string, args ...any) {
	HumanReadable().Log(context.Background(), LevelFatal, msg, args...)
	os.Exit(1)
}

// File logger rotation defaults, applied to every file logger created
// via NewFileLogger.
const (
	logMaxSizeMB  = 100
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// NewFileLogger creates a JSON slog.Logger writing to filePath with rotation,
// tagged with the given service name. The returned close function flushes and
// closes the underlying file.
func NewFileLogger(filePath, serviceName string, level slog.Leveler) (*slog.Logger, func() error, error) {
	// lumberjack doesn't create directories
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	logWriter := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
		Compress:   false,
	}

	handler := slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	})
	logger := slog.New(handler).With("service", serviceName)

	return logger, logWriter.Close, nil
}

// NewDiscardLogger returns a logger that writes nowhere, for use as a
// fallback when a file logger cannot be created.
func NewDiscardLogger(serviceName string) *slog.Logger {
	handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler).With("service", serviceName)
}
