// Package store is the storage port of the record store: a flat key-value
// space of text values, read and rewritten whole.
package store

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"diario/internal/codec"
)

// KV is implemented by Memory, SQL and Sealed.
type KV interface {
	// Get returns the value under key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
	// Keys lists keys starting with prefix in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Read is Get with the storage fallback: a value the KV itself cannot
// decode (a sealed value that fails to open) is logged and read as absent.
func Read(ctx context.Context, kv KV, log *zap.Logger, key string) (string, bool, error) {
	text, ok, err := kv.Get(ctx, key)
	if errors.Is(err, codec.ErrDecode) {
		log.Warn("stored value unreadable, treating as absent", zap.String("key", key), zap.Error(err))
		return "", false, nil
	}
	return text, ok, err
}
