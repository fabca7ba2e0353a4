package kv

import (
	"context"
	"errors"
	"sort"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) MultiGet(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	raw, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	values := make([][]byte, len(raw))
	for i, v := range raw {
		if v == nil {
			continue
		}
		if str, ok := v.(string); ok {
			values[i] = []byte(str)
		}
	}
	return values, nil
}

func (s *RedisStore) GetByPrefix(ctx context.Context, prefix string) ([]Item, error) {
	var keys []string

	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return nil, nil
	}

	// SCAN order is unspecified; sort so scans are deterministic.
	sort.Strings(keys)

	values, err := s.MultiGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(keys))
	for i, key := range keys {
		if values[i] == nil {
			// Deleted between SCAN and MGET.
			continue
		}
		items = append(items, Item{Key: key, Value: values[i]})
	}
	return items, nil
}
