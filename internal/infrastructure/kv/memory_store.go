package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is a mutex-guarded map implementation of Store, used by tests
// and local development instead of a running Redis.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

func (s *MemoryStore) MultiGet(ctx context.Context, keys []string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make([][]byte, len(keys))
	for i, key := range keys {
		if value, ok := s.data[key]; ok {
			values[i] = append([]byte(nil), value...)
		}
	}
	return values, nil
}

func (s *MemoryStore) GetByPrefix(ctx context.Context, prefix string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []Item
	for key, value := range s.data {
		if strings.HasPrefix(key, prefix) {
			items = append(items, Item{Key: key, Value: append([]byte(nil), value...)})
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
	return items, nil
}

// Len reports the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
