package logger

import (
	"context"
	"testing"

	obscontext "github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestWithContext_OmitsUnsetFields(t *testing.T) {
	base, logs := observed()

	WithContext(context.Background(), base).Info("bare")

	require.Equal(t, 1, logs.Len())
	assert.Empty(t, logs.All()[0].ContextMap())
}

func TestWithContext_CarriesCorrelation(t *testing.T) {
	base, logs := observed()
	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = obscontext.WithCompanyID(ctx, "c1")
	ctx = obscontext.WithActor(ctx, "user", "u7")

	provider := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	ctx, span := provider.Tracer("test").Start(ctx, "ingest")
	defer span.End()

	WithContext(ctx, base).Info("traced")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "c1", fields["company_id"])
	assert.Equal(t, "user", fields["actor_type"])
	assert.Equal(t, "u7", fields["actor_id"])
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}

func TestWithReceipt_CompanyWrittenOnce(t *testing.T) {
	base, logs := observed()
	ctx := obscontext.WithCompanyID(context.Background(), "from-header")

	WithReceipt(ctx, base, " c2 ", " p9 ").Info("decided")

	entry := logs.All()[0]
	companies := 0
	for _, f := range entry.Context {
		if f.Key == "company_id" {
			companies++
			assert.Equal(t, "c2", f.String)
		}
	}
	assert.Equal(t, 1, companies)
	assert.Equal(t, "p9", entry.ContextMap()["project_id"])
}

func TestWithReceipt_FallsBackToContextCompany(t *testing.T) {
	base, logs := observed()
	ctx := obscontext.WithCompanyID(context.Background(), "c3")

	WithReceipt(ctx, base, "", "").Info("limited")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "c3", fields["company_id"])
	assert.NotContains(t, fields, "project_id")
}

func TestWithReceipt_NilSafe(t *testing.T) {
	assert.Nil(t, WithReceipt(context.Background(), nil, "c", "p"))
	assert.Nil(t, WithContext(context.Background(), nil))

	base, logs := observed()
	//nolint:staticcheck // nil context is tolerated
	WithReceipt(nil, base, "c", "").Info("no ctx")
	assert.Equal(t, "c", logs.All()[0].ContextMap()["company_id"])
}

func TestNew_DebugFlagSetsLevel(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	log, err := New(nil, Config{Debug: true, Version: "1.2.3"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New(nil, Config{Debug: true, Level: "warn"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))

	_, err = New(nil, Config{Level: "loud"})
	assert.Error(t, err)
}
