package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	obscontext "github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

var errUnique = errors.New("UNIQUE constraint failed: expenses.company_id, expenses.image_hash")

func observeGlobal(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func insertSQL() (string, int64) {
	return `INSERT INTO "expenses" ("company_id","image_hash") VALUES ($1,$2)`, 0
}

func TestQueryLoggerUniqueViolationIsWarn(t *testing.T) {
	logs := observeGlobal(t)
	cfg := DefaultQueryLoggerConfig(false)
	cfg.ExpectedError = func(err error) bool { return errors.Is(err, errUnique) }

	ctx := obscontext.WithCompanyID(context.Background(), "c1")
	NewQueryLogger(cfg).Trace(ctx, time.Now(), insertSQL, errUnique)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "INSERT", fields["operation"])
	assert.Equal(t, "expenses", fields["table"])
	assert.Equal(t, "c1", fields["company_id"])
}

func TestQueryLoggerErrorsAndNotFound(t *testing.T) {
	logs := observeGlobal(t)
	l := NewQueryLogger(DefaultQueryLoggerConfig(false))

	l.Trace(context.Background(), time.Now(), insertSQL, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now(), insertSQL, errors.New("connection reset"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}

func TestQueryLoggerSilentAndSlow(t *testing.T) {
	logs := observeGlobal(t)
	l := NewQueryLogger(QueryLoggerConfig{Level: gormlogger.Warn, SlowThreshold: time.Millisecond})

	l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now().Add(-time.Second), insertSQL, nil)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now().Add(-time.Second), insertSQL, nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestDescribeSQL(t *testing.T) {
	tests := []struct {
		sql   string
		op    string
		table string
	}{
		{sql: `SELECT * FROM expenses WHERE company_id = ?`, op: "SELECT", table: "expenses"},
		{sql: `INSERT INTO "expenses" (id) VALUES (1)`, op: "INSERT", table: "expenses"},
		{sql: `UPDATE expenses SET store = ?`, op: "UPDATE", table: "expenses"},
		{sql: `DELETE FROM expenses WHERE id = ?`, op: "DELETE", table: "expenses"},
		{sql: `PRAGMA foreign_keys`, op: "UNKNOWN", table: ""},
	}
	for _, tt := range tests {
		op, table := describeSQL(tt.sql)
		assert.Equal(t, tt.op, op, tt.sql)
		assert.Equal(t, tt.table, table, tt.sql)
	}
}
