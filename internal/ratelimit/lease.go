package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const keyHookupLease = "hookup:lease:%s"

// releaseLeaseScript deletes the lease only while it still carries the
// holder's token and reports 1 when it did.
const releaseLeaseScript = `
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
  return 0
end
return redis.call("DEL", KEYS[1])
`

var (
	ErrLeaseStoreMissing = errors.New("hookup lease store not configured")
	ErrLeaseInvalidID    = errors.New("hookup lease requires a hookup id")
	ErrLeaseInvalidTTL   = errors.New("hookup lease ttl must be positive")
	// ErrLeaseLost is returned by Release when the lease expired, or was
	// taken over, before the holder released it.
	ErrLeaseLost = errors.New("hookup lease lost before release")
)

// HookupLease grants one writer at a time per hookup across replicas.
type HookupLease struct {
	client  redis.Cmdable
	release *redis.Script
}

func NewHookupLease(client redis.Cmdable) *HookupLease {
	return &HookupLease{
		client:  client,
		release: redis.NewScript(releaseLeaseScript),
	}
}

func leaseKeyFor(hookupID string) (string, error) {
	hookupID = strings.ToLower(strings.TrimSpace(hookupID))
	if hookupID == "" {
		return "", ErrLeaseInvalidID
	}
	return fmt.Sprintf(keyHookupLease, hookupID), nil
}

// Acquire takes the lease on hookupID for ttl. The returned token must be
// passed to Release. ok is false when another writer holds the lease.
func (l *HookupLease) Acquire(ctx context.Context, hookupID string, ttl time.Duration) (token string, ok bool, err error) {
	if l == nil || l.client == nil {
		return "", false, ErrLeaseStoreMissing
	}
	if ttl <= 0 {
		return "", false, ErrLeaseInvalidTTL
	}
	key, err := leaseKeyFor(hookupID)
	if err != nil {
		return "", false, err
	}

	token = uuid.NewString()
	ok, err = l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lease %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release gives the lease back. A blank token is a no-op so callers can defer
// it unconditionally.
func (l *HookupLease) Release(ctx context.Context, hookupID, token string) error {
	if token == "" {
		return nil
	}
	if l == nil || l.client == nil {
		return ErrLeaseStoreMissing
	}
	key, err := leaseKeyFor(hookupID)
	if err != nil {
		return err
	}

	released, err := l.release.Run(ctx, l.client, []string{key}, token).Int64()
	if err != nil {
		return fmt.Errorf("release lease %s: %w", key, err)
	}
	if released == 0 {
		return ErrLeaseLost
	}
	return nil
}
