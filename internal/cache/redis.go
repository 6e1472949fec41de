package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements RoleStore and IdempotencyStore on a shared Redis
// client, suitable for multi-instance deployments.
type RedisStore struct {
	client  *redis.Client
	roleTTL time.Duration
}

// NewRedisStore connects to Redis and verifies connectivity.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return &RedisStore{client: client, roleTTL: DefaultRoleTTL}, nil
}

// NewRedisStoreWithClient wraps an existing client; useful in tests.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, roleTTL: DefaultRoleTTL}
}

func roleKey(userID string) string { return "role:" + userID }

func idemKey(key string) string { return "triage:idempotency:" + key }

// GetRole returns the cached role flag for a user.
func (s *RedisStore) GetRole(ctx context.Context, userID string) (string, error) {
	val, err := s.client.Get(ctx, roleKey(userID)).Result()
	if err == redis.Nil {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("get role: %w", err)
	}
	return val, nil
}

// SetRole caches the role flag with the configured TTL.
func (s *RedisStore) SetRole(ctx context.Context, userID, role string) error {
	if err := s.client.Set(ctx, roleKey(userID), role, s.roleTTL).Err(); err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	return nil
}

// ClearRole drops the cached role flag.
func (s *RedisStore) ClearRole(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, roleKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear role: %w", err)
	}
	return nil
}

// MarkOnce marks a submission key via SETNX with a TTL.
func (s *RedisStore) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, idemKey(key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark submission: %w", err)
	}
	return ok, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }

var (
	_ RoleStore        = (*RedisStore)(nil)
	_ IdempotencyStore = (*RedisStore)(nil)
)
