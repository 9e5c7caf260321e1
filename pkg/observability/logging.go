// Package observability provides leveled structured logging and Prometheus
// metrics for the graph store and its servers.
package observability

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger provides structured logging with bound fields. Loggers are cheap to
// derive and safe for concurrent use.
type Logger struct {
	level  LogLevel
	output io.Writer
	fields map[string]interface{}

	mu *sync.Mutex
}

// NewLogger creates a new logger writing to output at the given minimum level
func NewLogger(level LogLevel, output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}
	return &Logger{
		level:  level,
		output: output,
		fields: make(map[string]interface{}),
		mu:     &sync.Mutex{},
	}
}

// NewDefaultLogger creates an INFO-level logger writing to stdout
func NewDefaultLogger() *Logger {
	return NewLogger(INFO, os.Stdout)
}

// WithFields returns a derived logger with additional bound fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{level: l.level, output: l.output, fields: merged, mu: l.mu}
}

// WithField returns a derived logger with one additional bound field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(DEBUG, msg, fields...)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(INFO, msg, fields...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(WARN, msg, fields...)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(ERROR, msg, fields...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, fields ...map[string]interface{}) {
	l.log(FATAL, msg, fields...)
	os.Exit(1)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Debug(fmt.Sprintf(format, args...))
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// LogOperation logs the start and end of an operation with its duration
func (l *Logger) LogOperation(operation string, fn func() error) error {
	start := time.Now()
	l.Info("Starting operation: " + operation)

	err := fn()

	duration := time.Since(start)
	if err != nil {
		l.Error("Operation failed: "+operation, map[string]interface{}{
			"duration": duration,
			"error":    err.Error(),
		})
	} else {
		l.Info("Operation completed: "+operation, map[string]interface{}{
			"duration": duration,
		})
	}
	return err
}

// log formats and writes one entry. Fields are emitted in sorted key order
// so output is stable.
func (l *Logger) log(level LogLevel, msg string, extraFields ...map[string]interface{}) {
	if level < l.level {
		return
	}

	all := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		all[k] = v
	}
	for _, fields := range extraFields {
		for k, v := range fields {
			all[k] = v
		}
	}

	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(time.Now().Format(time.RFC3339))
	sb.WriteString("] ")
	sb.WriteString(level.String())
	sb.WriteString(": ")
	sb.WriteString(msg)

	if len(all) > 0 {
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" |")
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, all[k])
		}
	}
	sb.WriteByte('\n')

	l.mu.Lock()
	l.output.Write([]byte(sb.String()))
	l.mu.Unlock()
}

// Global logger instance
var globalLogger = NewDefaultLogger()

// SetGlobalLogger sets the global logger
func SetGlobalLogger(logger *Logger) {
	globalLogger = logger
}

// GetGlobalLogger returns the global logger
func GetGlobalLogger() *Logger {
	return globalLogger
}
