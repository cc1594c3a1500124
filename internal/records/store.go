// Package records is the daily record store: per-user, date-keyed journal
// entries, water intake, challenges, future letters and meal plans.
package records

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"diario/internal/codec"
	"diario/internal/models"
	"diario/internal/store"
	"diario/internal/validation"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrUnknownChallenge   = errors.New("unknown challenge type")
	ErrChallengeActive    = errors.New("challenge of this type already active")
	ErrChallengeCompleted = errors.New("challenge already completed")
	ErrLetterNotReady     = errors.New("letter not yet delivered")
)

// EntryRepository persists daily entries. KVEntries keeps them in the
// key-value store; the hosted package keeps them in the registros table.
type EntryRepository interface {
	Entries(ctx context.Context, userID string) ([]models.DailyEntry, error)
	// Entry reports ok=false when the user has no entry for date.
	Entry(ctx context.Context, userID, date string) (models.DailyEntry, bool, error)
	// PutEntry upserts by date, keeping ID and CreatedAt of an existing
	// entry. replaced is true when one existed.
	PutEntry(ctx context.Context, userID string, e models.DailyEntry) (stored models.DailyEntry, replaced bool, err error)
	DeleteEntries(ctx context.Context, userID string) error
}

type Store struct {
	kv      store.KV
	entries EntryRepository
	log     *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*userLock
}

// userLock is dropped from Store.locks once nobody holds or waits on it.
type userLock struct {
	mu   sync.Mutex
	refs int
}

type Option func(*Store)

// WithEntries stores daily entries somewhere other than the KV store.
func WithEntries(repo EntryRepository) Option {
	return func(s *Store) { s.entries = repo }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(kv store.KV, log *zap.Logger, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		locks: make(map[string]*userLock),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.entries == nil {
		s.entries = NewKVEntries(kv, log)
	}
	return s
}

// lock serializes read-modify-write cycles for one user.
func (s *Store) lock(userID string) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userID)
		}
		s.mu.Unlock()
	}
}

// checkToday rejects a client calendar day more than one day away from the
// server's UTC date. Civil time zones stay within that window.
func (s *Store) checkToday(today string) error {
	d, err := validation.ParseDate("local_date", today)
	if err != nil {
		return err
	}
	y, m, dd := s.now().UTC().Date()
	server := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	if diff := d.Sub(server); diff < -24*time.Hour || diff > 24*time.Hour {
		return &validation.Error{Field: "local_date", Message: "local date is too far from the current date"}
	}
	return nil
}

// loadList reads a whole collection. Unreadable values come back empty.
func loadList[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	text, ok, err := store.Read(ctx, s.kv, s.log, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []T{}, nil
	}
	return codec.DecodeOrEmpty[T](s.log, key, text), nil
}

// saveList rewrites a whole collection before the mutation returns.
func saveList[T any](ctx context.Context, s *Store, key string, coll []T) error {
	text, err := codec.Encode(coll)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, key, text); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
