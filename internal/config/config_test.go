package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("INGEST_TIMEOUT", "")
	t.Setenv("RATE_LIMIT_ENABLED", "")

	cfg := Load()
	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, 5*time.Second, cfg.IngestTimeout)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 20, cfg.RateLimit.ExpenseIngestCompanyBurst)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("INGEST_TIMEOUT", "2s")
	t.Setenv("RATE_LIMIT_ENABLED", "yes")
	t.Setenv("EXPENSE_INGEST_COMPANY_RATE", "1.5")
	t.Setenv("EXPENSE_INGEST_LOCK_TTL", "nonsense")
	t.Setenv("ENVIRONMENT", "Production")

	cfg := Load()
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, 2*time.Second, cfg.IngestTimeout)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 1.5, cfg.RateLimit.ExpenseIngestCompanyRate)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.ExpenseIngestLockTTL)
	assert.True(t, cfg.IsProduction())
}

func TestIngestPolicyHolder_Defaults(t *testing.T) {
	var nilHolder *IngestPolicyHolder
	assert.Equal(t, DefaultIngestPolicy(), nilHolder.Get())

	holder := NewStaticIngestPolicyHolder(IngestPolicy{MaxImageBytes: 1024, StrictBase64: true})
	assert.Equal(t, int64(1024), holder.Get().MaxImageBytes)
	assert.True(t, holder.Get().StrictBase64)
}

func TestValidateIngestPolicy(t *testing.T) {
	assert.Error(t, validateIngestPolicy(IngestPolicy{}))
	assert.NoError(t, validateIngestPolicy(DefaultIngestPolicy()))
}
