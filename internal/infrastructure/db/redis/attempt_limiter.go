package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter allows a fixed number of sign-in attempts per key within a
// window that starts at the first attempt.
type AttemptLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
}

func NewAttemptLimiter(client *redis.Client, max int, window time.Duration) *AttemptLimiter {
	if max <= 0 {
		max = maxAttempts
	}
	if window <= 0 {
		window = attemptWindow
	}
	return &AttemptLimiter{client: client, max: int64(max), window: window}
}

// Allow counts an attempt against key. The counter and its expiry are set in
// one transaction on every call, so a failed expiry is repaired by the next
// attempt instead of leaving a counter that never resets. Requires Redis 7
// for EXPIRE NX.
func (l *AttemptLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := attemptsKey(key)
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("count attempt: %w", err)
	}
	return incr.Val() <= l.max, nil
}

func (l *AttemptLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, attemptsKey(key)).Err()
}
