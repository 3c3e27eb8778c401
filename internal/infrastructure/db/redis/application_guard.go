package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ApplicationGuard serializes submissions for one (job, applicant) pair
// with a short-lived lock key.
type ApplicationGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewApplicationGuard(client *redis.Client) *ApplicationGuard {
	return &ApplicationGuard{client: client, ttl: applyLockTTL}
}

// Acquire reports false when another submission holds the pair.
func (g *ApplicationGuard) Acquire(ctx context.Context, jobID, applicantID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, applyKey(jobID, applicantID), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("apply lock: %w", err)
	}
	return ok, nil
}

func (g *ApplicationGuard) Release(ctx context.Context, jobID, applicantID string) error {
	return g.client.Del(ctx, applyKey(jobID, applicantID)).Err()
}
