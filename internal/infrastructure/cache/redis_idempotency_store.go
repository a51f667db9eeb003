package cache

import (
	"context"
	"fmt"
	"time"

	appinvoicing "github.com/florexport/backend/internal/application/invoicing"
	"github.com/florexport/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const bulkKeyPrefix = "bulk:idempotency:"

// RedisIdempotencyStore keeps idempotency claims in Redis so bulk payment
// retries are rejected even when requests land on different instances.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

var _ appinvoicing.IdempotencyStore = (*RedisIdempotencyStore)(nil)

// NewRedisIdempotencyStore connects to Redis and verifies the connection
// before returning the store.
func NewRedisIdempotencyStore(cfg *config.RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisIdempotencyStoreWithClient(client, bulkKeyPrefix), nil
}

// NewRedisIdempotencyStoreWithClient wraps an existing client, sharing it
// with other components or test fixtures.
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = bulkKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// Reserve claims key for ttl. SETNX makes the claim atomic; a false return
// means another request already holds it.
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Release drops the claim so the same key can be submitted again, used when
// the reserved request fails before completing.
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// Close shuts down the Redis client.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}
