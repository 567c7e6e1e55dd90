package ratelimit

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseKeyIsCanonical(t *testing.T) {
	key, err := leaseKeyFor("  6F9619FF-8B86-D011-B42D-00C04FC964FF ")
	require.NoError(t, err)
	assert.Equal(t, "hookup:lease:6f9619ff-8b86-d011-b42d-00c04fc964ff", key)

	_, err = leaseKeyFor(" ")
	assert.ErrorIs(t, err, ErrLeaseInvalidID)
}

func TestLeaseRejectsBadInput(t *testing.T) {
	ctx := context.Background()

	var missing *HookupLease
	_, ok, err := missing.Acquire(ctx, "id", time.Second)
	assert.ErrorIs(t, err, ErrLeaseStoreMissing)
	assert.False(t, ok)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })
	lease := NewHookupLease(client)

	_, _, err = lease.Acquire(ctx, "id", 0)
	assert.ErrorIs(t, err, ErrLeaseInvalidTTL)

	_, _, err = lease.Acquire(ctx, "", time.Second)
	assert.ErrorIs(t, err, ErrLeaseInvalidID)

	assert.ErrorIs(t, lease.Release(ctx, "", "token"), ErrLeaseInvalidID)
}

func TestLeaseReleaseWithoutTokenIsNoop(t *testing.T) {
	var missing *HookupLease
	assert.NoError(t, missing.Release(context.Background(), "id", ""))
}
