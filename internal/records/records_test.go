package records

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"diario/internal/catalog"
	"diario/internal/crypto"
	"diario/internal/keyspace"
	"diario/internal/models"
	"diario/internal/store"
	"diario/internal/validation"
)

type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

func newTestStore(t *testing.T) (*Store, *store.Memory, *fixedClock) {
	t.Helper()
	kv := store.NewMemory()
	clock := &fixedClock{t: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
	return NewStore(kv, zaptest.NewLogger(t), WithClock(clock.now)), kv, clock
}

func TestUpsertReplacesInPlaceOrAppends(t *testing.T) {
	type rec struct{ ID, Date, Text string }
	byDate := func(r rec) string { return r.Date }
	keepID := func(prev rec, next *rec) { next.ID = prev.ID }

	coll := []rec{{"1", "2026-10-14", "a"}, {"2", "2026-10-15", "b"}}

	coll, i, replaced := Upsert(coll, byDate, rec{"new", "2026-10-14", "a2"}, keepID)
	assert.True(t, replaced)
	assert.Equal(t, 0, i)
	assert.Equal(t, rec{"1", "2026-10-14", "a2"}, coll[0])

	coll, i, replaced = Upsert(coll, byDate, rec{"3", "2026-10-16", "c"}, keepID)
	assert.False(t, replaced)
	assert.Equal(t, 2, i)
	assert.Len(t, coll, 3)
}

func TestSaveEntryUpsertsByDate(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()

	first, replaced, err := s.SaveEntry(ctx, "u1", EntryInput{Date: "2026-10-16", MoodScore: 3, Gratitude1: "café"})
	require.NoError(t, err)
	assert.False(t, replaced)
	require.NotEmpty(t, first.ID)

	clock.t = clock.t.Add(time.Hour)
	second, replaced, err := s.SaveEntry(ctx, "u1", EntryInput{Date: "2026-10-16", MoodScore: 5, Reflection: "melhorou"})
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, clock.t, second.UpdatedAt)

	entries, err := s.Entries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].MoodScore)
	assert.Equal(t, "", entries[0].Gratitude1)
	assert.Equal(t, "melhorou", entries[0].Reflection)
}

func TestSaveEntryValidates(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.SaveEntry(ctx, "u1", EntryInput{Date: "2026-10-16", MoodScore: 0})
	assert.True(t, validation.IsValidation(err))

	_, _, err = s.SaveEntry(ctx, "u1", EntryInput{Date: "ontem", MoodScore: 3})
	assert.True(t, validation.IsValidation(err))
}

func TestEntriesIsolatedPerUser(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.SaveEntry(ctx, "u1", EntryInput{Date: "2026-10-16", MoodScore: 3})
	require.NoError(t, err)

	entries, err := s.Entries(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = s.Entry(ctx, "u2", "2026-10-16")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntriesNewestFirst(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	for _, d := range []string{"2026-10-14", "2026-10-16", "2026-10-15"} {
		_, _, err := s.SaveEntry(ctx, "u1", EntryInput{Date: d, MoodScore: 4})
		require.NoError(t, err)
	}
	entries, err := s.Entries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"2026-10-16", "2026-10-15", "2026-10-14"},
		[]string{entries[0].EntryDate, entries[1].EntryDate, entries[2].EntryDate})
}

func TestAddWaterKeepsJournalAndJournalKeepsWater(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	e, err := s.AddWater(ctx, "u1", "2026-10-16", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, e.WaterIntake)
	assert.Equal(t, 0, e.MoodScore)

	_, err = s.AddWater(ctx, "u1", "2026-10-16", 1)
	require.NoError(t, err)

	saved, _, err := s.SaveEntry(ctx, "u1", EntryInput{Date: "2026-10-16", MoodScore: 4})
	require.NoError(t, err)
	assert.Equal(t, 2, saved.WaterIntake)
	assert.Equal(t, e.ID, saved.ID)

	e, err = s.AddWater(ctx, "u1", "2026-10-16", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, e.WaterIntake)
	assert.Equal(t, 4, e.MoodScore)

	e, err = s.AddWater(ctx, "u1", "2026-10-16", -10)
	require.NoError(t, err)
	assert.Equal(t, 0, e.WaterIntake)
}

func TestAddWaterBounds(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	for _, glasses := range []int{MaxGlassesPerRequest + 1, -MaxGlassesPerRequest - 1, 1 << 62} {
		_, err := s.AddWater(ctx, "u1", "2026-10-16", glasses)
		assert.True(t, validation.IsValidation(err), "glasses %d", glasses)
	}

	var e models.DailyEntry
	var err error
	for i := 0; i < MaxWaterIntake/MaxGlassesPerRequest+2; i++ {
		e, err = s.AddWater(ctx, "u1", "2026-10-16", MaxGlassesPerRequest)
		require.NoError(t, err)
	}
	assert.Equal(t, MaxWaterIntake, e.WaterIntake, "intake saturates")

	e, err = s.AddWater(ctx, "u1", "2026-10-16", -1)
	require.NoError(t, err)
	assert.Equal(t, MaxWaterIntake-1, e.WaterIntake)
}

func TestMalformedCollectionReadsAsEmpty(t *testing.T) {
	s, kv, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, keyspace.MustKeyFor("u1", keyspace.DailyEntries), "{broken"))

	entries, err := s.Entries(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, _, err = s.SaveEntry(ctx, "u1", EntryInput{Date: "2026-10-16", MoodScore: 2})
	require.NoError(t, err)
	entries, err = s.Entries(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUnopenableSealedCollectionReadsAsEmpty(t *testing.T) {
	c, err := crypto.NewCipher([]byte(strings.Repeat("k", 32)), []byte(strings.Repeat("i", 32)))
	require.NoError(t, err)
	mem := store.NewMemory()
	s := NewStore(store.NewSealed(mem, c), zaptest.NewLogger(t))
	ctx := context.Background()

	for _, kind := range []keyspace.Kind{keyspace.Challenges, keyspace.DailyEntries, keyspace.Letters} {
		require.NoError(t, mem.Set(ctx, keyspace.MustKeyFor("u1", kind), "not-a-sealed-value"))
	}
	require.NoError(t, mem.Set(ctx, keyspace.MustKeyFor("u1", keyspace.MealPlan, "2026-10-16"), "not-a-sealed-value"))

	challenges, err := s.Challenges(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, challenges)
	entries, err := s.Entries(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, entries)
	plan, err := s.MealPlan(ctx, "u1", "2026-10-16")
	require.NoError(t, err)
	assert.Zero(t, plan.TotalCalories)

	started, err := s.StartChallenge(ctx, "u1", catalog.LightMind7)
	require.NoError(t, err)
	challenges, err = s.Challenges(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, challenges, 1)
	assert.Equal(t, started.ID, challenges[0].ID)
}

func TestChallengeCompletesOnSeventhAdvance(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	c, err := s.StartChallenge(ctx, "u1", catalog.LightMind7)
	require.NoError(t, err)
	assert.Equal(t, 1, c.CurrentDay)
	assert.Equal(t, "Pratique 5 minutos de respiração", c.TodayTask)

	for i := 1; i <= 6; i++ {
		c, err = s.AdvanceChallenge(ctx, "u1", c.ID)
		require.NoError(t, err)
		assert.False(t, c.Completed, "advance %d", i)
		assert.Nil(t, c.CompletedAt, "advance %d", i)
		assert.Equal(t, min(i+1, 7), c.CurrentDay)
	}

	c, err = s.AdvanceChallenge(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.True(t, c.Completed)
	require.NotNil(t, c.CompletedAt)
	assert.Equal(t, 7, c.CurrentDay)
	assert.Equal(t, 100, c.Progress)

	_, err = s.AdvanceChallenge(ctx, "u1", c.ID)
	assert.ErrorIs(t, err, ErrChallengeCompleted)
}

func TestStartChallengeRules(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.StartChallenge(ctx, "u1", "1000_days")
	assert.ErrorIs(t, err, ErrUnknownChallenge)

	first, err := s.StartChallenge(ctx, "u1", catalog.LightMind7)
	require.NoError(t, err)
	_, err = s.StartChallenge(ctx, "u1", catalog.LightMind7)
	assert.ErrorIs(t, err, ErrChallengeActive)

	_, err = s.StartChallenge(ctx, "u1", catalog.Gratitude21)
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		_, err = s.AdvanceChallenge(ctx, "u1", first.ID)
		require.NoError(t, err)
	}
	_, err = s.StartChallenge(ctx, "u1", catalog.LightMind7)
	require.NoError(t, err, "a completed enrollment does not block a new one")

	all, err := s.Challenges(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = s.AdvanceChallenge(ctx, "u1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClassify(t *testing.T) {
	today := "2026-10-16"
	l := models.FutureLetter{DeliveryDate: "2026-10-15"}
	assert.Equal(t, models.LetterReady, Classify(l, today))

	l.DeliveryDate = today
	assert.Equal(t, models.LetterReady, Classify(l, today))

	l.DeliveryDate = "2026-10-17"
	assert.Equal(t, models.LetterScheduled, Classify(l, today))

	l.IsRead = true
	assert.Equal(t, models.LetterRead, Classify(l, today))
	assert.Equal(t, models.LetterRead, Classify(l, "2020-01-01"))
}

func TestLetterLifecycle(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()

	_, err := s.WriteLetter(ctx, "u1", "oi futuro", "2026-10-16", "2026-10-16")
	assert.True(t, validation.IsValidation(err), "delivery must be after today")
	_, err = s.WriteLetter(ctx, "u1", "   ", "2026-10-20", "2026-10-16")
	assert.True(t, validation.IsValidation(err))

	l, err := s.WriteLetter(ctx, "u1", "oi futuro", "2026-10-17", "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, models.LetterScheduled, l.Status)

	_, err = s.ReadLetter(ctx, "u1", l.ID, "2026-10-16")
	assert.ErrorIs(t, err, ErrLetterNotReady)

	letters, err := s.Letters(ctx, "u1", "2026-10-17")
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, models.LetterReady, letters[0].Status)

	read, err := s.ReadLetter(ctx, "u1", l.ID, "2026-10-17")
	require.NoError(t, err)
	assert.Equal(t, models.LetterRead, read.Status)
	require.NotNil(t, read.ReadAt)
	firstRead := *read.ReadAt

	clock.t = clock.t.Add(48 * time.Hour)
	again, err := s.ReadLetter(ctx, "u1", l.ID, "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, firstRead, *again.ReadAt)

	_, err = s.ReadLetter(ctx, "u1", "nope", "2026-10-19")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLettersRejectStaleToday(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.WriteLetter(ctx, "u1", "atrasada", "2000-06-01", "2000-01-01")
	assert.True(t, validation.IsValidation(err), "creation day follows the server clock")
	_, err = s.WriteLetter(ctx, "u1", "cedo demais", "2026-10-20", "2026-10-19")
	assert.True(t, validation.IsValidation(err))

	// One day either side covers every time zone.
	l, err := s.WriteLetter(ctx, "u1", "oi", "2026-10-16", "2026-10-15")
	require.NoError(t, err)
	_, err = s.WriteLetter(ctx, "u1", "oi", "2026-10-18", "2026-10-17")
	require.NoError(t, err)

	_, err = s.ReadLetter(ctx, "u1", l.ID, "2030-01-01")
	assert.True(t, validation.IsValidation(err), "cannot fast-forward to delivery")
	letters, err := s.Letters(ctx, "u1", "2026-10-16")
	require.NoError(t, err)
	for _, v := range letters {
		assert.False(t, v.IsRead)
	}
}

func TestMealPlan(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()

	empty, err := s.MealPlan(ctx, "u1", "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16", empty.Date)
	assert.Equal(t, 0, empty.TotalCalories)

	p, err := s.SaveMealPlan(ctx, "u1", MealPlanInput{
		Date:      "2026-10-16",
		Breakfast: "Pão integral com queijo branco",
		Lunch:     "Filé de peixe assado e arroz integral",
		Dinner:    "pizza",
	})
	require.NoError(t, err)
	assert.Equal(t, 250+380, p.TotalCalories)
	created := p.CreatedAt

	clock.t = clock.t.Add(time.Hour)
	p, err = s.SaveMealPlan(ctx, "u1", MealPlanInput{Date: "2026-10-16", AfternoonSnack: "Smoothie de frutas vermelhas"})
	require.NoError(t, err)
	assert.Equal(t, 170, p.TotalCalories)
	assert.Equal(t, created, p.CreatedAt)

	got, err := s.MealPlan(ctx, "u1", "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	other, err := s.MealPlan(ctx, "u2", "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, 0, other.TotalCalories, "meal plans are per user")
}

func TestExportImportAndPurge(t *testing.T) {
	s, kv, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.SaveEntry(ctx, "u1", EntryInput{Date: "2026-10-15", MoodScore: 4, Gratitude1: "amigos"})
	require.NoError(t, err)
	_, err = s.StartChallenge(ctx, "u1", catalog.SelfCare30)
	require.NoError(t, err)
	_, err = s.WriteLetter(ctx, "u1", "carta", "2026-12-25", "2026-10-16")
	require.NoError(t, err)
	_, err = s.SaveMealPlan(ctx, "u1", MealPlanInput{Date: "2026-10-16", Lunch: "Omelete com legumes e arroz integral"})
	require.NoError(t, err)

	ds, err := s.Export(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, ds.Entries, 1)
	assert.Len(t, ds.Challenges, 1)
	assert.Len(t, ds.Letters, 1)
	assert.Len(t, ds.MealPlans, 1)

	res, err := s.Import(ctx, "u2", ds)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Entries: 1, Challenges: 1, Letters: 1, MealPlans: 1}, res)

	// Importing the same dataset again is idempotent.
	res, err = s.Import(ctx, "u2", ds)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Challenges)
	assert.Equal(t, 0, res.Letters)

	copied, err := s.Export(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, copied.Entries, 1)
	assert.Len(t, copied.Challenges, 1)
	assert.Equal(t, "u2", copied.Entries[0].UserID)
	assert.Equal(t, 390, copied.MealPlans[0].TotalCalories)

	require.NoError(t, s.Purge(ctx, "u1"))
	keys, err := kv.Keys(ctx, "diario:")
	require.NoError(t, err)
	for _, k := range keys {
		assert.NotContains(t, k, ":u1", "key %s survived purge", k)
	}
	left, err := s.Export(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, left.Entries, 1)
}

func TestImportNormalizesChallenges(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()

	existing, err := s.StartChallenge(ctx, "u1", catalog.Gratitude21)
	require.NoError(t, err)

	stamped := clock.t.Add(-time.Hour)
	res, err := s.Import(ctx, "u1", models.Dataset{Challenges: []models.Challenge{
		{ID: "over", Type: catalog.LightMind7, CurrentDay: 40},
		{ID: "done", Type: catalog.SelfCare30, CurrentDay: 3, Completed: true},
		{ID: "stray", Type: catalog.SelfCare30, CurrentDay: 2, CompletedAt: &stamped},
		{ID: "twin", Type: catalog.Gratitude21, CurrentDay: 5},
	}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Challenges, "second active enrollment is skipped")

	views, err := s.Challenges(ctx, "u1")
	require.NoError(t, err)
	byID := map[string]ChallengeView{}
	for _, v := range views {
		byID[v.ID] = v
	}
	require.Len(t, byID, 4)
	assert.Contains(t, byID, existing.ID)
	assert.NotContains(t, byID, "twin")

	assert.Equal(t, 7, byID["over"].CurrentDay)
	assert.False(t, byID["over"].Completed)

	assert.Equal(t, 30, byID["done"].CurrentDay)
	require.NotNil(t, byID["done"].CompletedAt)
	assert.Equal(t, clock.t, *byID["done"].CompletedAt)

	assert.Nil(t, byID["stray"].CompletedAt)
	assert.Equal(t, 2, byID["stray"].CurrentDay)
	assert.False(t, byID["stray"].StartDate.IsZero())
}

func TestUserLocksArePruned(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddWater(ctx, "u1", "2026-10-16", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	e, err := s.Entry(ctx, "u1", "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, 8, e.WaterIntake)

	require.NoError(t, s.Purge(ctx, "u1"))
	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Empty(t, s.locks)
}

func TestImportRejectsInvalid(t *testing.T) {
	s, _, _ := newTestStore(t)
	_, err := s.Import(context.Background(), "u1", models.Dataset{
		Entries: []models.DailyEntry{{EntryDate: "2026-10-16", MoodScore: 9}},
	})
	assert.True(t, validation.IsValidation(err))

	_, err = s.Import(context.Background(), "u1", models.Dataset{
		Challenges: []models.Challenge{{Type: "bogus"}},
	})
	assert.ErrorIs(t, err, ErrUnknownChallenge)
}
