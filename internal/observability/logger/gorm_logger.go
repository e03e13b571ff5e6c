package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// QueryLoggerConfig tunes how database statements reach the zap logger.
type QueryLoggerConfig struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
	// ExpectedError reports errors the caller handles itself, such as unique
	// violations on the receipt hash index. They are logged at warn, not error.
	ExpectedError func(error) bool
}

func DefaultQueryLoggerConfig(debug bool) QueryLoggerConfig {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return QueryLoggerConfig{
		Level:         level,
		SlowThreshold: 250 * time.Millisecond,
	}
}

// QueryLogger adapts gorm's logger interface to the request-scoped zap logger.
// Bound parameters are never logged because they carry receipt images and hashes.
type QueryLogger struct {
	cfg QueryLoggerConfig
}

func NewQueryLogger(cfg QueryLoggerConfig) *QueryLogger {
	return &QueryLogger{cfg: cfg}
}

func (l *QueryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.cfg.Level = level
	return &next
}

func (l *QueryLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *QueryLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *QueryLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *QueryLogger) message(ctx context.Context, min gormlogger.LogLevel, level zapcore.Level, msg string, data []interface{}) {
	if l.cfg.Level < min {
		return
	}
	if len(data) > 0 {
		msg = fmt.Sprintf(msg, data...)
	}
	if ce := FromContext(ctx).Check(level, msg); ce != nil {
		ce.Write(zap.String("component", "db"))
	}
}

func (l *QueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && errors.Is(err, gormlogger.ErrRecordNotFound):
		// lookups by hash and fingerprint miss routinely
		if l.cfg.Level >= gormlogger.Info {
			l.write(ctx, fc, elapsed, nil, zapcore.DebugLevel)
		}
	case err != nil && l.cfg.ExpectedError != nil && l.cfg.ExpectedError(err):
		l.write(ctx, fc, elapsed, err, zapcore.WarnLevel)
	case err != nil && l.cfg.Level >= gormlogger.Error:
		l.write(ctx, fc, elapsed, err, zapcore.ErrorLevel)
	case l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold && l.cfg.Level >= gormlogger.Warn:
		l.write(ctx, fc, elapsed, nil, zapcore.WarnLevel)
	case l.cfg.Level >= gormlogger.Info:
		l.write(ctx, fc, elapsed, nil, zapcore.DebugLevel)
	}
}

func (l *QueryLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

func (l *QueryLogger) write(ctx context.Context, fc func() (string, int64), elapsed time.Duration, err error, level zapcore.Level) {
	ce := FromContext(ctx).Check(level, "db.query")
	if ce == nil {
		return
	}
	sql, rows := fc()
	op, table := describeSQL(sql)
	fields := []zap.Field{
		zap.String("component", "db"),
		zap.String("operation", op),
		zap.String("table", table),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	}
	if level == zapcore.DebugLevel || err != nil {
		fields = append(fields, zap.String("sql", strings.TrimSpace(sql)))
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows_affected", rows))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

// describeSQL returns the statement verb and the first table it touches.
func describeSQL(sql string) (string, string) {
	tokens := strings.Fields(strings.ToUpper(sql))
	op := "UNKNOWN"
	for i := 0; i < len(tokens)-1; i++ {
		token := strings.Trim(tokens[i], "();")
		switch token {
		case "SELECT", "INSERT", "DELETE":
			if op == "UNKNOWN" {
				op = token
			}
		case "UPDATE":
			if op == "UNKNOWN" {
				return token, tableName(tokens[i+1])
			}
		case "FROM", "INTO":
			return op, tableName(tokens[i+1])
		}
	}
	return op, ""
}

func tableName(token string) string {
	return strings.ToLower(strings.Trim(token, "\"`();"))
}

var _ gormlogger.Interface = (*QueryLogger)(nil)
