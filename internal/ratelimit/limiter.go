package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/hookup/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyHookupWrite = "hookup:write:client:%s"
	keyHookupRead  = "hookup:read:client:%s"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
}

// HookupLimiter throttles hookup API traffic per client and serializes
// mutations of a single hookup across replicas.
type HookupLimiter struct {
	enabled bool

	bucket *TokenBucket
	lease  *HookupLease
	limits *LimitsHolder
}

func NewHookupLimiter(p Params) (*HookupLimiter, error) {
	limitCfg := p.Config.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}

	limits, err := NewLimitsHolder(limitCfg.ConfigPath, p.Log)
	if err != nil {
		return nil, fmt.Errorf("load rate limits: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	if p.Lifecycle != nil {
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := client.Ping(ctx).Err(); err != nil {
					p.Log.Warn("rate limit redis unreachable", zap.String("addr", addr), zap.Error(err))
				}
				return nil
			},
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
	}

	return NewHookupLimiterWithClient(client, limits), nil
}

func NewHookupLimiterWithClient(client redis.Cmdable, limits *LimitsHolder) *HookupLimiter {
	return &HookupLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		lease:   NewHookupLease(client),
		limits:  limits,
	}
}

func (l *HookupLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *HookupLimiter) AllowWrite(ctx context.Context, clientKey string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyHookupWrite, strings.TrimSpace(clientKey)), l.limits.Get().Writes)
}

func (l *HookupLimiter) AllowRead(ctx context.Context, clientKey string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyHookupRead, strings.TrimSpace(clientKey)), l.limits.Get().Reads)
}

func (l *HookupLimiter) TryLockHookup(ctx context.Context, hookupID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.lease.Acquire(ctx, hookupID, l.limits.Get().LockTTL())
}

func (l *HookupLimiter) ReleaseHookup(ctx context.Context, hookupID, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.lease.Release(ctx, hookupID, token)
}
