package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

// GormLogger routes gorm's statement and message logs to zap, carrying the
// request fields found on the context.
type GormLogger struct {
	base          *zap.Logger
	logLevel      gormlogger.LogLevel
	slowThreshold time.Duration
	withSQL       bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets when a statement is reported as slow. Zero turns
// slow statement warnings off.
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slowThreshold = threshold }
}

// WithSQL adds the statement text to successful query logs. Failed and slow
// statements always carry it.
func WithSQL(enabled bool) GormLoggerOption {
	return func(l *GormLogger) { l.withSQL = enabled }
}

func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{base: base.Named("gorm"), logLevel: level, slowThreshold: defaultSlowThreshold}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode returns a copy at level
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.logLevel = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, needs gormlogger.LogLevel, level zapcore.Level, msg string, data []any) {
	if l.logLevel < needs {
		return
	}
	Enrich(ctx, l.base).Log(level, fmt.Sprintf(msg, data...))
}

// Trace logs one executed statement. Failures win over slowness. Lookups
// that find no record are not logged; repositories report them as NOT_FOUND.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent || errors.Is(err, gormlogger.ErrRecordNotFound) {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold

	var (
		level zapcore.Level
		msg   string
		extra []zap.Field
	)
	switch {
	case failed && l.logLevel >= gormlogger.Error:
		level, msg, extra = zapcore.ErrorLevel, "SQL error", []zap.Field{zap.Error(err)}
	case !failed && slow && l.logLevel >= gormlogger.Warn:
		level, msg, extra = zapcore.WarnLevel, "Slow SQL", []zap.Field{zap.Duration("threshold", l.slowThreshold)}
	case !failed && l.logLevel >= gormlogger.Info:
		level, msg = zapcore.DebugLevel, "SQL query"
	default:
		return
	}

	sql, rows := fc()
	fields := append([]zap.Field{zap.Duration("elapsed", elapsed), zap.Int64("rows", rows)}, extra...)
	if level != zapcore.DebugLevel || l.withSQL {
		fields = append(fields, zap.String("sql", sql))
	}
	Enrich(ctx, l.base).Log(level, msg, fields...)
}

// MapGormLogLevel derives gorm's verbosity from the application log level.
// Statements are only traced at debug.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	case "silent":
		return gormlogger.Silent
	}
	return gormlogger.Warn
}
