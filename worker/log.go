package worker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/blazbratanic/service-broker/service"
)

// LogLevel represents the severity level of a log entry
type LogLevel string

const (
	// LogLevelDebug represents debug-level logs
	LogLevelDebug LogLevel = "DEBUG"
	// LogLevelInfo represents informational logs
	LogLevelInfo LogLevel = "INFO"
	// LogLevelWarn represents warning logs
	LogLevelWarn LogLevel = "WARN"
	// LogLevelError represents error-level logs
	LogLevelError LogLevel = "ERROR"
)

// LogEntry is the structured record published on a worker's log service.
// Subscribers anywhere in the process can collect the log streams of a
// whole worker group by subscribing to "log".
type LogEntry struct {
	Timestamp string   `json:"timestamp"` // RFC3339 format
	Level     LogLevel `json:"level"`
	Worker    string   `json:"worker"`
	Message   string   `json:"message"`
}

// Logger mirrors worker log messages to a standard slog.Logger while
// publishing them on the worker's log service for in-process consumers.
type Logger struct {
	workerName string
	svc        *service.Service[LogEntry, service.Void]
	logger     *slog.Logger
}

// NewLogger creates a logger emitting on svc. A nil slog logger disables
// local mirroring.
func NewLogger(workerName string, svc *service.Service[LogEntry, service.Void], logger *slog.Logger) *Logger {
	return &Logger{
		workerName: workerName,
		svc:        svc,
		logger:     logger,
	}
}

// Debug logs a debug-level message
func (l *Logger) Debug(msg string) {
	l.log(LogLevelDebug, msg)
}

// Info logs an info-level message
func (l *Logger) Info(msg string) {
	l.log(LogLevelInfo, msg)
}

// Warn logs a warning-level message
func (l *Logger) Warn(msg string) {
	l.log(LogLevelWarn, msg)
}

// Error logs an error-level message with optional error details
func (l *Logger) Error(msg string, err error) {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	l.log(LogLevelError, msg)
}

// Log publishes an entry at the given level.
func (l *Logger) Log(level LogLevel, msg string) {
	l.log(level, msg)
}

func (l *Logger) log(level LogLevel, msg string) {
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Worker:    l.workerName,
		Message:   msg,
	}
	// A log service without subscribers is routine; nothing to report.
	_, _ = l.svc.Emit(entry)

	if l.logger == nil {
		return
	}
	switch level {
	case LogLevelDebug:
		l.logger.Debug(msg, "worker", l.workerName)
	case LogLevelInfo:
		l.logger.Info(msg, "worker", l.workerName)
	case LogLevelWarn:
		l.logger.Warn(msg, "worker", l.workerName)
	case LogLevelError:
		l.logger.Error(msg, "worker", l.workerName)
	}
}
