package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hirehub/jobboard/internal/core/domain"
)

// SessionStore implements ports.SessionStore.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Get(ctx context.Context, clientID string) (*domain.SessionRecord, error) {
	raw, err := s.client.Get(ctx, sessionKey(clientID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("session get: %w", err)
	}

	var rec domain.SessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return &rec, nil
}

// Put stores rec. A non-positive ttl keeps the record until overwritten.
func (s *SessionStore) Put(ctx context.Context, rec *domain.SessionRecord, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, sessionKey(rec.ClientID), raw, ttl).Err()
}
