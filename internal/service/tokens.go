package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenStore keeps revoked tokens in Redis, keyed by token digest so
// raw tokens never land in the store.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "revoked_token:" + hex.EncodeToString(sum[:])
}

func (s *RedisTokenStore) Deny(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Set(ctx, tokenKey(token), "1", ttl).Err()
}

func (s *RedisTokenStore) IsDenied(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, tokenKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
