package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"
)

// SlogLogger implements Logger using Go's standard log/slog with JSON output.
type SlogLogger struct {
	handler slog.Handler
	level   slog.Level
	module  string
	fields  []Field
}

// NewSlogLogger creates a new slog-based logger writing JSON to writer.
// A nil writer defaults to stdout.
func NewSlogLogger(writer io.Writer, level LogLevel) *SlogLogger {
	if writer == nil {
		writer = os.Stdout
	}
	opts := &slog.HandlerOptions{
		Level: parseSlogLevel(level),
	}
	return &SlogLogger{
		handler: slog.NewJSONHandler(writer, opts),
		level:   parseSlogLevel(level),
	}
}

// Module returns a logger scoped to a specific module. Nested calls produce
// dot-separated module names (e.g. "alerting.notifier").
func (l *SlogLogger) Module(name string) Logger {
	if l == nil {
		return nil
	}
	moduleName := name
	if l.module != "" {
		moduleName = l.module + "." + name
	}
	return &SlogLogger{
		handler: l.handler,
		level:   l.level,
		module:  moduleName,
		fields:  l.fields,
	}
}

// Debug logs a debug message
func (l *SlogLogger) Debug(msg string, fields ...Field) {
	if l == nil || l.level > slog.LevelDebug {
		return
	}
	l.log(slog.LevelDebug, msg, fields...)
}

// Info logs an info message
func (l *SlogLogger) Info(msg string, fields ...Field) {
	if l == nil || l.level > slog.LevelInfo {
		return
	}
	l.log(slog.LevelInfo, msg, fields...)
}

// Warn logs a warning message
func (l *SlogLogger) Warn(msg string, fields ...Field) {
	if l == nil || l.level > slog.LevelWarn {
		return
	}
	l.log(slog.LevelWarn, msg, fields...)
}

// Error logs an error message
func (l *SlogLogger) Error(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.log(slog.LevelError, msg, fields...)
}

// With returns a new logger with accumulated fields
func (l *SlogLogger) With(fields ...Field) Logger {
	if l == nil {
		return nil
	}
	return &SlogLogger{
		handler: l.handler,
		level:   l.level,
		module:  l.module,
		fields:  slices.Concat(l.fields, fields),
	}
}

func (l *SlogLogger) log(level slog.Level, msg string, fields ...Field) {
	attrs := make([]slog.Attr, 0, len(l.fields)+len(fields)+1)
	if l.module != "" {
		attrs = append(attrs, slog.String("module", l.module))
	}
	for _, f := range l.fields {
		attrs = append(attrs, fieldToAttr(f))
	}
	for _, f := range fields {
		attrs = append(attrs, fieldToAttr(f))
	}
	slog.New(l.handler).LogAttrs(context.Background(), level, msg, attrs...)
}

func fieldToAttr(f Field) slog.Attr {
	switch v := f.Value.(type) {
	case string:
		return slog.String(f.Key, v)
	case int:
		return slog.Int(f.Key, v)
	case int64:
		return slog.Int64(f.Key, v)
	case bool:
		return slog.Bool(f.Key, v)
	case time.Time:
		return slog.Time(f.Key, v)
	case time.Duration:
		return slog.Duration(f.Key, v)
	default:
		return slog.Any(f.Key, v)
	}
}

func parseSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
