// Package ratelimit throttles guest login attempts with a fixed-window
// counter in Redis.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/diagnosis/luxstay-hotel/pkg/logger"
)

type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewLimiter(redisURL string, limit int, window time.Duration) (*Limiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Limiter{
		client: redis.NewClient(opts),
		limit:  limit,
		window: window,
	}, nil
}

// Allow increments the window counter for key and reports whether the request
// is within the limit. Redis being down fails open: a broken limiter must not
// take the login path down with it.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// Hash the key so guest names and IPs never appear in Redis.
	hashed := fmt.Sprintf("login_attempts:%x", sha256.Sum256([]byte(key)))

	count, err := l.client.Incr(ctx, hashed).Result()
	if err != nil {
		logger.WarnContext(ctx, "Rate limiter unavailable, allowing request", "error", err)
		return true
	}
	if count == 1 {
		l.client.Expire(ctx, hashed, l.window)
	}
	return count <= int64(l.limit)
}

func (l *Limiter) Close() error {
	return l.client.Close()
}
