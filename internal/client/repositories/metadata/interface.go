// Package metadata is a small key/value table for local state that has no
// table of its own: sync bookkeeping and account preferences.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns nil, nil for an absent key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
