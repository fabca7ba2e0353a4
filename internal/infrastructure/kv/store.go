package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists under the key.
var ErrNotFound = errors.New("kv: key not found")

// Item is a single key/value record returned by prefix scans.
type Item struct {
	Key   string
	Value []byte
}

// Store is a flat string-keyed byte store. Relationships between records are
// reconstructed by enumerating keys that share a prefix; there are no
// transactions or multi-key atomic writes, so callers must tolerate
// read-then-write races.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	MultiGet(ctx context.Context, keys []string) ([][]byte, error)
	GetByPrefix(ctx context.Context, prefix string) ([]Item, error)
}
