package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenKey is the key holding the remembered token.
const RedisTokenKey = "propdash:credential:durable"

// RedisStore persists the remembered token in Redis, for deployments where
// several dashboard instances share one login.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedis connects to redisAddr and verifies the connection.
func NewRedis(redisAddr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store: redis connection failed: %w", err)
	}

	return NewRedisWithClient(client, RedisTokenKey), nil
}

// NewRedisWithClient wraps an existing client, storing the token under key.
func NewRedisWithClient(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Load returns the remembered token, or "" if none is stored.
func (s *RedisStore) Load(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get token: %w", err)
	}
	return token, nil
}

// Save stores the token without expiry; the server decides when it is stale.
func (s *RedisStore) Save(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, 0).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

// Clear deletes the token.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del token: %w", err)
	}
	return nil
}
