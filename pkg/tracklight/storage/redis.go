package storage

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists values in Redis. Useful when an app fleet shares a
// Redis instance or when a companion backend keeps per-install state.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	closed    atomic.Bool
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces all keys with the given prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.keyPrefix = prefix
	}
}

// NewRedisStore creates a store backed by the given Redis client.
// The store takes ownership of the client and closes it on Close.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + key
}

// GetItem implements Store.
func (s *RedisStore) GetItem(ctx context.Context, key string) (string, error) {
	if s.closed.Load() {
		return "", ErrStoreClosed
	}

	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get item: %w", err)
	}
	return value, nil
}

// SetItem implements Store.
func (s *RedisStore) SetItem(ctx context.Context, key, value string) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}

	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set item: %w", err)
	}
	return nil
}

// RemoveItem implements Store.
func (s *RedisStore) RemoveItem(ctx context.Context, key string) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.client.Close()
}
