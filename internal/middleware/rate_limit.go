package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Decision is the outcome of a single rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter counts requests per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RedisLimiter is a fixed window counter shared by every API instance.
type RedisLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	now    func() time.Time
}

// NewRedisLimiter creates a new redis backed limiter
func NewRedisLimiter(client *redis.Client, config RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{
		redis:  client,
		config: config,
		now:    time.Now,
	}
}

// Allow increments the counter for key in the current window.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= rl.config.Limit,
		Limit:     rl.config.Limit,
		Remaining: remaining,
		Reset:     windowStart.Add(rl.config.Window),
	}, nil
}

// maxIdleEntries bounds the memory limiter before idle keys are swept.
const maxIdleEntries = 10000

type memoryEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-process token bucket per key, used when redis is
// not configured. Limit requests refill evenly over Window.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	limit   int
	window  time.Duration
	every   rate.Limit
	now     func() time.Time
}

// NewMemoryLimiter creates a limiter allowing limit requests per window.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*memoryEntry),
		limit:   limit,
		window:  window,
		every:   rate.Every(window / time.Duration(limit)),
		now:     time.Now,
	}
}

// Allow takes one token from key's bucket.
func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := m.now()
	lim := m.get(key, now)

	allowed := lim.AllowN(now, 1)
	remaining := int(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   allowed,
		Limit:     m.limit,
		Remaining: remaining,
		Reset:     now.Add(m.window / time.Duration(m.limit)),
	}, nil
}

func (m *MemoryLimiter) get(key string, now time.Time) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok {
		e.lastSeen = now
		return e.limiter
	}

	if len(m.entries) >= maxIdleEntries {
		for k, e := range m.entries {
			if now.Sub(e.lastSeen) > m.window {
				delete(m.entries, k)
			}
		}
	}

	e := &memoryEntry{limiter: rate.NewLimiter(m.every, m.limit), lastSeen: now}
	m.entries[key] = e
	return e.limiter
}

// RateLimit enforces limiter per authenticated user. It must run after
// AuthMiddleware. A failing limiter lets the request through.
func RateLimit(limiter Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		d, err := limiter.Allow(c.Request.Context(), userID.String())
		if err != nil {
			logger.Warn("rate limit check failed", zap.Error(err), zap.String("user_id", userID.String()))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

		if !d.Allowed {
			retryAfter := int(time.Until(d.Reset).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
