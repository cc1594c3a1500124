package store

import (
	"context"
	"fmt"

	"diario/internal/codec"
	"diario/internal/crypto"
)

// Sealed encrypts every value before it reaches the wrapped KV. The key is
// used as associated data so a value cannot be replayed under another key.
type Sealed struct {
	next   KV
	cipher *crypto.Cipher
}

func NewSealed(next KV, c *crypto.Cipher) *Sealed {
	return &Sealed{next: next, cipher: c}
}

func (s *Sealed) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.next.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	plain, err := s.cipher.Open(v, []byte(key))
	if err != nil {
		return "", false, fmt.Errorf("%w: open %s: %v", codec.ErrDecode, key, err)
	}
	return plain, true, nil
}

func (s *Sealed) Set(ctx context.Context, key, value string) error {
	sealed, err := s.cipher.Seal(value, []byte(key))
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return s.next.Set(ctx, key, sealed)
}

func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}

func (s *Sealed) Keys(ctx context.Context, prefix string) ([]string, error) {
	return s.next.Keys(ctx, prefix)
}
