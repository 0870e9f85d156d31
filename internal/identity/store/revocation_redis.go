package store

import (
	"context"
	"fmt"
	"time"

	platformredis "geoattend/internal/platform/redis"
)

// RedisRevocations stores revoked token IDs in Redis with a TTL matching the
// token's remaining lifetime, so entries expire on their own.
type RedisRevocations struct {
	client *platformredis.Client
}

func NewRedisRevocations(client *platformredis.Client) *RedisRevocations {
	return &RedisRevocations{client: client}
}

func revocationKey(tokenID string) string {
	return "revoked_token:" + tokenID
}

func (s *RedisRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired; nothing to remember.
		return nil
	}
	if err := s.client.Set(ctx, revocationKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *RedisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revocationKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return n > 0, nil
}
