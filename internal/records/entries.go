package records

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"diario/internal/codec"
	"diario/internal/keyspace"
	"diario/internal/models"
	"diario/internal/store"
	"diario/internal/validation"
)

// KVEntries keeps all of a user's entries in one daily_entries value.
type KVEntries struct {
	kv  store.KV
	log *zap.Logger
}

func NewKVEntries(kv store.KV, log *zap.Logger) *KVEntries {
	return &KVEntries{kv: kv, log: log}
}

func (r *KVEntries) load(ctx context.Context, userID string) (string, []models.DailyEntry, error) {
	key, err := keyspace.KeyFor(userID, keyspace.DailyEntries)
	if err != nil {
		return "", nil, err
	}
	text, ok, err := store.Read(ctx, r.kv, r.log, key)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return key, []models.DailyEntry{}, nil
	}
	return key, codec.DecodeOrEmpty[models.DailyEntry](r.log, key, text), nil
}

func (r *KVEntries) Entries(ctx context.Context, userID string) ([]models.DailyEntry, error) {
	_, entries, err := r.load(ctx, userID)
	return entries, err
}

func (r *KVEntries) Entry(ctx context.Context, userID, date string) (models.DailyEntry, bool, error) {
	_, entries, err := r.load(ctx, userID)
	if err != nil {
		return models.DailyEntry{}, false, err
	}
	i := indexOf(entries, func(e models.DailyEntry) bool { return e.EntryDate == date })
	if i < 0 {
		return models.DailyEntry{}, false, nil
	}
	return entries[i], true, nil
}

func (r *KVEntries) PutEntry(ctx context.Context, userID string, e models.DailyEntry) (models.DailyEntry, bool, error) {
	key, entries, err := r.load(ctx, userID)
	if err != nil {
		return models.DailyEntry{}, false, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.UserID = userID
	entries, i, replaced := Upsert(entries, entryDate, e, func(prev models.DailyEntry, next *models.DailyEntry) {
		next.ID = prev.ID
		next.CreatedAt = prev.CreatedAt
	})
	text, err := codec.Encode(entries)
	if err != nil {
		return models.DailyEntry{}, false, err
	}
	if err := r.kv.Set(ctx, key, text); err != nil {
		return models.DailyEntry{}, false, fmt.Errorf("persist %s: %w", key, err)
	}
	return entries[i], replaced, nil
}

func (r *KVEntries) DeleteEntries(ctx context.Context, userID string) error {
	key, err := keyspace.KeyFor(userID, keyspace.DailyEntries)
	if err != nil {
		return err
	}
	return r.kv.Delete(ctx, key)
}

func entryDate(e models.DailyEntry) string { return e.EntryDate }

// SortNewestFirst orders entries by date, most recent first.
func SortNewestFirst(entries []models.DailyEntry) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].EntryDate > entries[j].EntryDate })
}

type EntryInput struct {
	Date       string
	MoodScore  int
	Gratitude1 string
	Gratitude2 string
	Gratitude3 string
	Reflection string
}

// SaveEntry upserts the journal for in.Date. Water intake logged earlier the
// same day is kept.
func (s *Store) SaveEntry(ctx context.Context, userID string, in EntryInput) (models.DailyEntry, bool, error) {
	if _, err := validation.ParseDate("entry_date", in.Date); err != nil {
		return models.DailyEntry{}, false, err
	}
	if err := validation.ValidateMood(in.MoodScore); err != nil {
		return models.DailyEntry{}, false, err
	}
	defer s.lock(userID)()
	return s.saveEntry(ctx, userID, in)
}

func (s *Store) saveEntry(ctx context.Context, userID string, in EntryInput) (models.DailyEntry, bool, error) {
	existing, ok, err := s.entries.Entry(ctx, userID, in.Date)
	if err != nil {
		return models.DailyEntry{}, false, err
	}
	now := s.now()
	e := models.DailyEntry{
		UserID:     userID,
		EntryDate:  in.Date,
		MoodScore:  in.MoodScore,
		Gratitude1: strings.TrimSpace(in.Gratitude1),
		Gratitude2: strings.TrimSpace(in.Gratitude2),
		Gratitude3: strings.TrimSpace(in.Gratitude3),
		Reflection: strings.TrimSpace(in.Reflection),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if ok {
		e.WaterIntake = existing.WaterIntake
	}
	return s.entries.PutEntry(ctx, userID, e)
}

// Water intake bounds: one request moves the count by at most
// MaxGlassesPerRequest and a day never holds more than MaxWaterIntake.
const (
	MaxGlassesPerRequest = 50
	MaxWaterIntake       = 1000
)

// AddWater adds glasses (negative to undo) to the day's water intake,
// creating a mood-less entry when the day has none. The count stays within
// 0..MaxWaterIntake.
func (s *Store) AddWater(ctx context.Context, userID, date string, glasses int) (models.DailyEntry, error) {
	if _, err := validation.ParseDate("date", date); err != nil {
		return models.DailyEntry{}, err
	}
	if glasses < -MaxGlassesPerRequest || glasses > MaxGlassesPerRequest {
		return models.DailyEntry{}, &validation.Error{Field: "glasses", Message: fmt.Sprintf("glasses must be between -%d and %d", MaxGlassesPerRequest, MaxGlassesPerRequest)}
	}
	defer s.lock(userID)()

	e, ok, err := s.entries.Entry(ctx, userID, date)
	if err != nil {
		return models.DailyEntry{}, err
	}
	now := s.now()
	if !ok {
		e = models.DailyEntry{EntryDate: date, CreatedAt: now}
	}
	e.WaterIntake = min(max(e.WaterIntake+glasses, 0), MaxWaterIntake)
	e.UpdatedAt = now
	stored, _, err := s.entries.PutEntry(ctx, userID, e)
	return stored, err
}

// Entries returns the user's entries, newest first.
func (s *Store) Entries(ctx context.Context, userID string) ([]models.DailyEntry, error) {
	entries, err := s.entries.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	SortNewestFirst(entries)
	return entries, nil
}

func (s *Store) Entry(ctx context.Context, userID, date string) (models.DailyEntry, error) {
	e, ok, err := s.entries.Entry(ctx, userID, date)
	if err != nil {
		return models.DailyEntry{}, err
	}
	if !ok {
		return models.DailyEntry{}, ErrNotFound
	}
	return e, nil
}
