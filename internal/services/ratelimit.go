package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const maxTrackedKeys = 10000

const (
	DefaultResetLimit  = 3
	DefaultResetWindow = time.Hour
)

// KeyedRateLimiter hands out one token bucket per key (client IP, email address, ...).
type KeyedRateLimiter struct {
	keys   map[string]*rate.Limiter
	mu     sync.RWMutex
	r      rate.Limit
	b      int
	logger *slog.Logger
}

func NewKeyedRateLimiter(r rate.Limit, b int, logger *slog.Logger) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		keys:   make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
		logger: logger,
	}
}

// StartCleanup resets the map when it grows past maxTrackedKeys, until ctx is done.
func (l *KeyedRateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.mu.Lock()
				if len(l.keys) > maxTrackedKeys {
					l.logger.Info("Cleaning up rate limiter map", "count", len(l.keys))
					l.keys = make(map[string]*rate.Limiter)
				}
				l.mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (l *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.keys[key]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.keys[key] = limiter
	}

	return limiter
}

func (l *KeyedRateLimiter) Allow(key string) bool {
	return l.GetLimiter(key).Allow()
}

// ResetThrottle bounds password reset mails per address. Counters live in redis when available so
// every instance shares them; otherwise an in-process limiter is used.
type ResetThrottle struct {
	rdb      *redis.Client
	fallback *KeyedRateLimiter
	limit    int
	window   time.Duration
	logger   *slog.Logger
}

// NewResetThrottle falls back to DefaultResetLimit per DefaultResetWindow for non-positive arguments.
func NewResetThrottle(rdb *redis.Client, limit int, window time.Duration, logger *slog.Logger) *ResetThrottle {
	if limit <= 0 {
		limit = DefaultResetLimit
	}
	if window <= 0 {
		window = DefaultResetWindow
	}
	return &ResetThrottle{
		rdb:      rdb,
		fallback: NewKeyedRateLimiter(rate.Every(window/time.Duration(limit)), limit, logger),
		limit:    limit,
		window:   window,
		logger:   logger,
	}
}

func (t *ResetThrottle) Allow(ctx context.Context, email string) bool {
	key := "reset:" + strings.ToLower(strings.TrimSpace(email))
	if t.rdb == nil {
		return t.fallback.Allow(key)
	}

	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()

	count, err := t.rdb.Incr(ctx, key).Result()
	if err != nil {
		t.logger.Warn("Reset throttle redis error, using local limiter", "error", err)
		return t.fallback.Allow(key)
	}
	if count == 1 {
		if err := t.rdb.Expire(ctx, key, t.window).Err(); err != nil {
			t.logger.Warn("Reset throttle expire failed", "error", err)
		}
	}
	return count <= int64(t.limit)
}
