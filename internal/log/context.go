package log

import (
	"context"
	"log/slog"
	"time"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// NewContext returns a copy of ctx carrying logger
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from ctx, falling back to the slog default
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides the recurring log lines of the worker and report
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogChange logs the outcome of applying one change to the store. Stale
// changes (not applied) are logged at debug.
func (sl *StructuredLogger) LogChange(ctx context.Context, entity, id string, modifiedAt time.Time, applied bool, took time.Duration) {
	fields := NewFields().
		WithEntity(entity, id, modifiedAt).
		WithOperation(OpSync).
		WithDuration(took).
		WithComponent(ComponentSync)
	fields[FieldApplied] = applied

	level := slog.LevelInfo
	if !applied {
		level = slog.LevelDebug
	}
	sl.logger.Logger.Log(ctx, level, "Change processed", fields.ToSlice()...)
}

// LogReport logs a finished monthly report
func (sl *StructuredLogger) LogReport(ctx context.Context, walletID, period string, categories int, took time.Duration) {
	fields := NewFields().
		WithWallet(walletID).
		WithPeriod(period).
		WithOperation(OpReport).
		WithDuration(took).
		WithComponent(ComponentReport)
	fields[FieldCount] = categories

	sl.logger.Logger.InfoContext(ctx, "Report built", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.Logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
