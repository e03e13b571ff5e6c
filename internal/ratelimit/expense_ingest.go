package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/config"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/expense/domain"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyExpenseIngestCompany = "expense:ingest:company:%s"
	keyExpenseIngestLock    = "expense:ingest:lock:%s:%s"
)

// ExpenseIngestLimiter throttles expense ingestion per company and guards
// concurrent ingests of the same receipt image. A nil limiter allows everything.
type ExpenseIngestLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker

	companyRate  float64
	companyBurst int
	lockTTL      time.Duration
}

func NewExpenseIngestLimiter(cfg config.Config) (*ExpenseIngestLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.ExpenseIngestCompanyRate <= 0 || limitCfg.ExpenseIngestCompanyBurst <= 0 {
		return nil, errors.New("expense ingest company rate limit must be positive")
	}
	if limitCfg.ExpenseIngestLockTTL <= 0 {
		return nil, errors.New("expense ingest lock ttl must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &ExpenseIngestLimiter{
		enabled:      true,
		bucket:       NewTokenBucket(client),
		locker:       NewLocker(client),
		companyRate:  limitCfg.ExpenseIngestCompanyRate,
		companyBurst: limitCfg.ExpenseIngestCompanyBurst,
		lockTTL:      limitCfg.ExpenseIngestLockTTL,
	}, nil
}

// ProvideIngestLocker exposes the limiter as the service's receipt lock.
func ProvideIngestLocker(l *ExpenseIngestLimiter) domain.IngestLocker {
	return l
}

func (l *ExpenseIngestLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *ExpenseIngestLimiter) AllowCompany(ctx context.Context, companyID string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, companyKey(companyID), l.companyRate, l.companyBurst)
}

func (l *ExpenseIngestLimiter) TryLockReceipt(ctx context.Context, companyID, imageHash string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, receiptLockKey(companyID, imageHash), l.lockTTL)
}

func (l *ExpenseIngestLimiter) ReleaseReceipt(ctx context.Context, companyID, imageHash, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, receiptLockKey(companyID, imageHash), token)
}

func companyKey(companyID string) string {
	return fmt.Sprintf(keyExpenseIngestCompany, strings.TrimSpace(companyID))
}

func receiptLockKey(companyID, imageHash string) string {
	return fmt.Sprintf(keyExpenseIngestLock, strings.TrimSpace(companyID), strings.TrimSpace(imageHash))
}
