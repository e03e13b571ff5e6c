package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/config"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExpenseIngestLimiter_DisabledReturnsNil(t *testing.T) {
	limiter, err := NewExpenseIngestLimiter(config.Config{})
	require.NoError(t, err)
	assert.Nil(t, limiter)
	assert.False(t, limiter.Enabled())

	res, err := limiter.AllowCompany(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	token, ok, err := limiter.TryLockReceipt(context.Background(), "c1", "hash")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, token)
	assert.NoError(t, limiter.ReleaseReceipt(context.Background(), "c1", "hash", token))
}

func TestNewExpenseIngestLimiter_Validation(t *testing.T) {
	base := config.RateLimitConfig{
		Enabled:                   true,
		RedisAddr:                 "localhost:6379",
		ExpenseIngestCompanyRate:  5,
		ExpenseIngestCompanyBurst: 10,
		ExpenseIngestLockTTL:      10 * time.Second,
	}

	limiter, err := NewExpenseIngestLimiter(config.Config{RateLimit: base})
	require.NoError(t, err)
	assert.True(t, limiter.Enabled())
	assert.True(t, ProvideIngestLocker(limiter).Enabled())

	noAddr := base
	noAddr.RedisAddr = " "
	_, err = NewExpenseIngestLimiter(config.Config{RateLimit: noAddr})
	assert.Error(t, err)

	noRate := base
	noRate.ExpenseIngestCompanyRate = 0
	_, err = NewExpenseIngestLimiter(config.Config{RateLimit: noRate})
	assert.Error(t, err)

	noTTL := base
	noTTL.ExpenseIngestLockTTL = 0
	_, err = NewExpenseIngestLimiter(config.Config{RateLimit: noTTL})
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "expense:ingest:company:c1", companyKey(" c1 "))
	assert.Equal(t, "expense:ingest:lock:c1:abc", receiptLockKey("c1", "abc"))
}

func TestTokenBucketGuards(t *testing.T) {
	var bucket *TokenBucket
	res, err := bucket.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
	assert.False(t, res.Allowed)

	var locker *Locker
	_, _, err = locker.TryLock(context.Background(), "k", time.Second)
	assert.ErrorIs(t, err, ErrLockUnavailable)
	assert.NoError(t, locker.Release(context.Background(), "k", "t"))

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	locker = NewLocker(client)
	_, _, err = locker.TryLock(context.Background(), "", time.Second)
	assert.ErrorIs(t, err, ErrLockKeyEmpty)
	_, _, err = locker.TryLock(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ErrLockTTL)
	assert.NoError(t, locker.Release(context.Background(), "k", ""))
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, time.Second, defaultBucketTTL(0, 1))
	assert.Equal(t, 8*time.Second, defaultBucketTTL(5, 20))
	assert.Equal(t, time.Second, defaultBucketTTL(1000, 1))
}

func TestCastHelpers(t *testing.T) {
	assert.Equal(t, int64(3), castToInt(int64(3)))
	assert.Equal(t, int64(2), castToInt(2.9))
	assert.Equal(t, int64(0), castToInt("x"))
	assert.Equal(t, 1.5, castToFloat("1.5"))
	assert.Equal(t, 4.0, castToFloat(int64(4)))
	assert.Equal(t, 0.0, castToFloat(nil))
}
