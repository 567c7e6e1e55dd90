package server

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	hookupdomain "github.com/smallbiznis/hookup/internal/hookup/domain"
	"github.com/smallbiznis/hookup/internal/observability/logger"
	"github.com/smallbiznis/hookup/internal/ratelimit"
	"go.uber.org/zap"
)

type accessKind int

const (
	accessRead accessKind = iota
	accessWrite
)

const (
	rateLimitReasonClientRead        = "client-read-rate"
	rateLimitReasonClientWrite       = "client-write-rate"
	rateLimitReasonHookupConcurrency = "hookup-write-concurrency"
)

// HookupRateLimit throttles hookup requests per client IP. Writes that target
// one hookup also hold a short lease on it so replicas do not interleave
// mutations of the same record.
func (s *Server) HookupRateLimit(access accessKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil || !s.limiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := normalizeRateLimitEndpoint(c)
		clientKey := c.ClientIP()

		allow, reason := s.limiter.AllowRead, rateLimitReasonClientRead
		if access == accessWrite {
			allow, reason = s.limiter.AllowWrite, rateLimitReasonClientWrite
		}

		res, err := allow(ctx, clientKey)
		if err != nil {
			logger.FromContext(ctx).Warn("hookup rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		setRateLimitHeaders(c, res)
		if !res.Allowed {
			s.denyRateLimit(c, endpoint, reason, res)
			return
		}

		hookupID, leased := leaseKey(c)
		if access == accessWrite && leased {
			token, locked, err := s.limiter.TryLockHookup(ctx, hookupID)
			if err != nil {
				logger.FromContext(ctx).Warn("hookup write lock failed", zap.Error(err))
				AbortWithError(c, ErrServiceUnavailable)
				return
			}
			if !locked {
				s.denyRateLimit(c, endpoint, rateLimitReasonHookupConcurrency, nil)
				return
			}
			defer func() {
				if err := s.limiter.ReleaseHookup(ctx, hookupID, token); err != nil {
					logger.FromContext(ctx).Warn("hookup write unlock failed", zap.Error(err))
				}
			}()
		}

		s.recordRateLimitAllowed(ctx, endpoint)
		c.Next()
	}
}

// leaseKey returns the canonical form of the :id route param. Malformed ids
// take no lease and are rejected by the handler.
func leaseKey(c *gin.Context) (string, bool) {
	raw := c.Param("id")
	if raw == "" {
		return "", false
	}
	id, err := hookupdomain.ParseID(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func (s *Server) denyRateLimit(c *gin.Context, endpoint, reason string, res *ratelimit.RateLimitResult) {
	ctx := c.Request.Context()
	logger.FromContext(ctx).Warn("hookup rate limit exceeded",
		zap.String("reason", reason),
		zap.String("endpoint", endpoint),
	)
	s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, reason)

	c.Header("Retry-After", retryAfterSeconds(res))
	c.Header("X-Rate-Limited-Reason", reason)
	AbortWithError(c, ErrRateLimited)
}

func (s *Server) recordRateLimitAllowed(ctx context.Context, endpoint string) {
	s.obsMetrics.RecordRateLimitAllowed(ctx, endpoint)
}

func setRateLimitHeaders(c *gin.Context, res *ratelimit.RateLimitResult) {
	if res == nil || res.Limit <= 0 {
		return
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
}

// retryAfterSeconds rounds up to whole seconds, never below one.
func retryAfterSeconds(res *ratelimit.RateLimitResult) string {
	seconds := 1
	if res != nil && res.RetryAfter > 0 {
		seconds = int(math.Ceil(res.RetryAfter.Seconds()))
	}
	return strconv.Itoa(max(seconds, 1))
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return c.Request.Method + " " + endpoint
}

