package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bridgeport/bridgeport-go/internal/domain/port"
)

// ParseLevel converts a level string to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger is a zerolog-backed implementation of port.Logger
type Logger struct {
	zl     zerolog.Logger
	writer io.Writer
}

// NewLogger creates a Logger writing console output to the given writer
func NewLogger(writer io.Writer, level string) *Logger {
	console := zerolog.ConsoleWriter{Out: writer, TimeFormat: "2006-01-02 15:04:05.000"}
	return &Logger{
		zl:     zerolog.New(console).Level(ParseLevel(level)).With().Timestamp().Logger(),
		writer: writer,
	}
}

// NewFileLogger creates a Logger that appends JSON lines to a file
func NewFileLogger(filePath string, level string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &Logger{
		zl:     zerolog.New(file).Level(ParseLevel(level)).With().Timestamp().Logger(),
		writer: file,
	}, nil
}

// SetLevel changes the logging level
func (l *Logger) SetLevel(level string) {
	l.zl = l.zl.Level(ParseLevel(level))
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Close closes the writer if it implements io.Closer
func (l *Logger) Close() error {
	if closer, ok := l.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

var _ port.Logger = (*Logger)(nil)
