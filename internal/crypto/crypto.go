package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const KeySize = 32

var (
	ErrKeySize            = errors.New("key must be 32 bytes")
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)

// Cipher seals values with AES-256-GCM and derives HMAC-SHA256 blind
// indexes so encrypted emails stay searchable.
type Cipher struct {
	aead     cipher.AEAD
	indexKey []byte
}

func NewCipher(encryptionKey, blindIndexKey []byte) (*Cipher, error) {
	if len(encryptionKey) != KeySize {
		return nil, fmt.Errorf("encryption key: %w", ErrKeySize)
	}
	if len(blindIndexKey) != KeySize {
		return nil, fmt.Errorf("blind index key: %w", ErrKeySize)
	}
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead, indexKey: blindIndexKey}, nil
}

// ParseKey accepts a 32-byte key given raw or base64-encoded.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) == KeySize {
		return []byte(s), nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(b) != KeySize {
		return nil, ErrKeySize
	}
	return b, nil
}

// Seal returns base64(nonce || ciphertext). aad binds the ciphertext to its
// context (the storage key); the same aad must be given to Open.
func (c *Cipher) Seal(plaintext string, aad []byte) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), aad)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *Cipher) Open(ciphertext string, aad []byte) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}
	n := c.aead.NonceSize()
	if len(data) < n {
		return "", ErrCiphertextTooShort
	}
	plain, err := c.aead.Open(nil, data[:n], data[n:], aad)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// BlindIndex is deterministic for equal inputs and reveals nothing else.
func (c *Cipher) BlindIndex(plaintext string) string {
	if plaintext == "" {
		return ""
	}
	h := hmac.New(sha256.New, c.indexKey)
	h.Write([]byte(plaintext))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
