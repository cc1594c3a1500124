// Package session issues and checks bearer tokens. A token is an HS256 JWT
// whose jti must still be listed under the user's sessions key, so signing
// out takes effect before the token expires.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"diario/internal/codec"
	"diario/internal/keyspace"
	"diario/internal/models"
	"diario/internal/store"
)

var ErrInvalidToken = errors.New("invalid or revoked token")

type Manager struct {
	kv     store.KV
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time

	mu sync.Mutex
}

func NewManager(kv store.KV, secret []byte, ttl time.Duration, log *zap.Logger) *Manager {
	return &Manager{kv: kv, secret: secret, ttl: ttl, log: log, now: time.Now}
}

func (m *Manager) load(ctx context.Context, key string) ([]models.Session, error) {
	text, ok, err := store.Read(ctx, m.kv, m.log, key)
	if err != nil || !ok {
		return []models.Session{}, err
	}
	return codec.DecodeOrEmpty[models.Session](m.log, key, text), nil
}

func (m *Manager) save(ctx context.Context, key string, sessions []models.Session) error {
	if len(sessions) == 0 {
		return m.kv.Delete(ctx, key)
	}
	text, err := codec.Encode(sessions)
	if err != nil {
		return err
	}
	return m.kv.Set(ctx, key, text)
}

// Issue records a new session for userID and returns its signed token.
// Expired sessions of the same user are dropped on the way.
func (m *Manager) Issue(ctx context.Context, userID string) (string, models.Session, error) {
	key, err := keyspace.KeyFor(userID, keyspace.Sessions)
	if err != nil {
		return "", models.Session{}, err
	}
	now := m.now().UTC()
	s := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        s.ID,
		IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", models.Session{}, fmt.Errorf("sign token: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	sessions, err := m.load(ctx, key)
	if err != nil {
		return "", models.Session{}, err
	}
	live := sessions[:0]
	for _, existing := range sessions {
		if existing.ExpiresAt.After(now) {
			live = append(live, existing)
		}
	}
	if err := m.save(ctx, key, append(live, s)); err != nil {
		return "", models.Session{}, fmt.Errorf("record session: %w", err)
	}
	return token, s, nil
}

// Verify checks the signature, the expiry and that the session was not
// revoked.
func (m *Manager) Verify(ctx context.Context, token string) (models.Session, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return models.Session{}, ErrInvalidToken
	}
	key, err := keyspace.KeyFor(claims.Subject, keyspace.Sessions)
	if err != nil {
		return models.Session{}, ErrInvalidToken
	}
	sessions, err := m.load(ctx, key)
	if err != nil {
		return models.Session{}, err
	}
	for _, s := range sessions {
		if s.ID == claims.ID {
			return s, nil
		}
	}
	return models.Session{}, ErrInvalidToken
}

// Revoke ends one session. Revoking an unknown session is not an error.
func (m *Manager) Revoke(ctx context.Context, userID, sessionID string) error {
	key, err := keyspace.KeyFor(userID, keyspace.Sessions)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sessions, err := m.load(ctx, key)
	if err != nil {
		return err
	}
	kept := sessions[:0]
	for _, s := range sessions {
		if s.ID != sessionID {
			kept = append(kept, s)
		}
	}
	return m.save(ctx, key, kept)
}

// RevokeAll ends every session of the user.
func (m *Manager) RevokeAll(ctx context.Context, userID string) error {
	key, err := keyspace.KeyFor(userID, keyspace.Sessions)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kv.Delete(ctx, key)
}
