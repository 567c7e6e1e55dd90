package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/hookup/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildResultDenied(t *testing.T) {
	res := buildResult(false, 0.5, 1_000, Limit{Rate: 2, Burst: 10})

	assert.False(t, res.Allowed)
	assert.Equal(t, 10, res.Limit)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 250*time.Millisecond, res.RetryAfter)
	assert.Equal(t, time.UnixMilli(1_250), res.ResetTime)
}

func TestBuildResultAllowed(t *testing.T) {
	res := buildResult(true, 3.7, 1_000, Limit{Rate: 1, Burst: 5})

	assert.True(t, res.Allowed)
	assert.Equal(t, 3, res.Remaining)
	assert.Zero(t, res.RetryAfter)
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, time.Second, defaultBucketTTL(0, 10))
	assert.Equal(t, 4*time.Second, defaultBucketTTL(5, 10))
	assert.Equal(t, time.Second, defaultBucketTTL(1000, 1))
}

func TestCastHelpers(t *testing.T) {
	assert.Equal(t, int64(1), castToInt(int64(1)))
	assert.Equal(t, int64(7), castToInt("7"))
	assert.Equal(t, 2.5, castToFloat("2.5"))
	assert.Equal(t, 4.0, castToFloat(int64(4)))
	assert.Zero(t, castToFloat("nan-ish"))
}

func TestNilBucketRejects(t *testing.T) {
	var bucket *TokenBucket
	_, err := bucket.Allow(context.Background(), "k", Limit{Rate: 1, Burst: 1})
	assert.Error(t, err)
}

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	limiter, err := NewHookupLimiter(Params{Config: config.Config{}, Log: zap.NewNop()})
	require.NoError(t, err)
	assert.Nil(t, limiter)
	assert.False(t, limiter.Enabled())

	ctx := context.Background()
	res, err := limiter.AllowWrite(ctx, "127.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	_, ok, err := limiter.TryLockHookup(ctx, "id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, limiter.ReleaseHookup(ctx, "id", ""))
}
