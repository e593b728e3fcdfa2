package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mangodeliveries/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisStateStore holds pending OAuth login states in Redis. States are
// single use: Take deletes atomically, so a replayed callback never
// matches. Suitable for multi-instance deployments.
type RedisStateStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisClient creates a Redis client from configuration and verifies
// the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// NewRedisStateStore creates a store over an existing Redis client
func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{
		client:    client,
		keyPrefix: "login:state:",
	}
}

// Put registers a login state with a TTL
func (s *RedisStateStore) Put(ctx context.Context, state string, ttl time.Duration) error {
	key := s.keyPrefix + state
	if err := s.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to store login state: %w", err)
	}
	return nil
}

// Take consumes a login state, reporting whether it was pending. GETDEL
// makes the check-and-remove a single atomic operation.
func (s *RedisStateStore) Take(ctx context.Context, state string) (bool, error) {
	key := s.keyPrefix + state

	_, err := s.client.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to take login state: %w", err)
	}
	return true, nil
}

// Close closes the underlying Redis client
func (s *RedisStateStore) Close() error {
	return s.client.Close()
}
