package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/college-hq/advising-engine/pkg/apperrors"
	"github.com/college-hq/advising-engine/pkg/config"
)

// redisKey builds the backing key "doc:{collection}:{key}".
func redisKey(collection, key string) string {
	return "doc:" + collection + ":" + key
}

// RedisStore is a Store backed by Redis. Documents live under
// "doc:{collection}:{key}"; Scan walks the collection prefix with SCAN.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg *config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, redisKey(collection, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, collection, key string, value []byte) error {
	if err := s.client.Set(ctx, redisKey(collection, key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Update implements Store using an optimistic WATCH/MULTI transaction.
// On a concurrent write the transaction fails and is retried with a
// fresh read, so neither writer's changes are lost.
func (s *RedisStore) Update(ctx context.Context, collection, key string, fn UpdateFunc) error {
	backingKey := redisKey(collection, key)

	txn := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, backingKey).Bytes()
		if errors.Is(err, redis.Nil) {
			current = nil
		} else if err != nil {
			return fmt.Errorf("redis get in txn: %w", err)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, backingKey, next, 0)
			return nil
		})
		return err
	}

	const maxRetries = 5
	for i := 0; i < maxRetries; i++ {
		err := s.client.Watch(ctx, txn, backingKey)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis update: too many conflicting writes on %s", backingKey)
}

// Delete implements Store. Redis DEL on an absent key is a no-op.
func (s *RedisStore) Delete(ctx context.Context, collection, key string) error {
	if err := s.client.Del(ctx, redisKey(collection, key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Scan implements Store by walking the collection prefix.
func (s *RedisStore) Scan(ctx context.Context, collection string, fn ScanFunc) error {
	prefix := "doc:" + collection + ":"
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()

	for iter.Next(ctx) {
		backingKey := iter.Val()
		value, err := s.client.Get(ctx, backingKey).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // deleted between SCAN and GET
		}
		if err != nil {
			return fmt.Errorf("redis get during scan: %w", err)
		}
		if err := fn(strings.TrimPrefix(backingKey, prefix), value); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements Store at compile time.
var _ Store = (*RedisStore)(nil)
