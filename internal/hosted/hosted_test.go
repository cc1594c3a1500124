package hosted

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"diario/internal/accounts"
	"diario/internal/db/dbtest"
	"diario/internal/models"
	"diario/internal/records"
	"diario/internal/services"
	"diario/internal/store"
)

func newEncryption(t *testing.T) *services.EncryptionService {
	t.Helper()
	svc, err := services.NewEncryptionService(bytes.Repeat([]byte("k"), 32), bytes.Repeat([]byte("i"), 32))
	require.NoError(t, err)
	return svc
}

func TestAccountsLifecycle(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)
	a := NewAccounts(conn, newEncryption(t), zaptest.NewLogger(t))

	p, err := a.SignUp(ctx, "Gabi@Example.com", "segredo1", "Gabi")
	require.NoError(t, err)
	assert.Equal(t, "gabi@example.com", p.Email)

	var stored string
	require.NoError(t, conn.Get(&stored, conn.Rebind(`SELECT email FROM usuarios WHERE id = ?`), p.ID))
	assert.NotEqual(t, "gabi@example.com", stored, "email is encrypted at rest")

	_, err = a.SignUp(ctx, "gabi@example.com", "outra123", "Gabi 2")
	assert.ErrorIs(t, err, accounts.ErrDuplicateEmail)

	got, err := a.SignIn(ctx, "gabi@example.com", "segredo1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "gabi@example.com", got.Email)
	assert.Equal(t, models.DefaultWaterGoal, got.WaterGoal)

	_, err = a.SignIn(ctx, "gabi@example.com", "errada")
	assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)

	goal := 12
	updated, err := a.UpdateProfile(ctx, p.ID, accounts.ProfileUpdate{WaterGoal: &goal})
	require.NoError(t, err)
	assert.Equal(t, 12, updated.WaterGoal)
	reread, err := a.Profile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, reread.WaterGoal)
	assert.Equal(t, "Gabi", reread.Name)

	require.NoError(t, a.DeleteAccount(ctx, p.ID))
	_, err = a.Profile(ctx, p.ID)
	assert.ErrorIs(t, err, accounts.ErrNotFound)
	_, err = a.SignIn(ctx, "gabi@example.com", "segredo1")
	assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
	assert.ErrorIs(t, a.DeleteAccount(ctx, p.ID), accounts.ErrNotFound)
}

func TestSignUpLosingRaceIsDuplicate(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)
	enc := newEncryption(t)
	a := NewAccounts(conn, enc, zaptest.NewLogger(t))

	// The winner's usuarios row is visible but its credential is not yet,
	// so the COUNT check passes and the insert hits the UNIQUE index.
	now := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	_, err := conn.Exec(conn.Rebind(`INSERT INTO usuarios (id, nome, email, email_blind_index, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`),
		"winner", "Iara", "sealed", enc.EmailBlindIndex("iara@example.com"), now, now)
	require.NoError(t, err)

	_, err = a.SignUp(ctx, "iara@example.com", "segredo1", "Iara")
	assert.ErrorIs(t, err, accounts.ErrDuplicateEmail)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
	assert.False(t, isUniqueViolation(nil))
}

func TestEntriesThroughRecordStore(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)
	enc := newEncryption(t)
	log := zaptest.NewLogger(t)
	a := NewAccounts(conn, enc, log)
	p, err := a.SignUp(ctx, "hugo@example.com", "segredo1", "Hugo")
	require.NoError(t, err)

	now := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	s := records.NewStore(store.NewMemory(), log,
		records.WithEntries(NewEntries(conn, enc)),
		records.WithClock(func() time.Time { return now }),
	)

	w, err := s.AddWater(ctx, p.ID, "2026-10-16", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, w.MoodScore)

	var humor *int
	require.NoError(t, conn.Get(&humor, conn.Rebind(`SELECT humor FROM registros WHERE id_usuario = ?`), p.ID))
	assert.Nil(t, humor, "water-only day stores no mood")

	e, replaced, err := s.SaveEntry(ctx, p.ID, records.EntryInput{
		Date: "2026-10-16", MoodScore: 4, Gratitude1: "família", Reflection: "um dia calmo",
	})
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, w.ID, e.ID)
	assert.Equal(t, 2, e.WaterIntake)

	var descricao string
	require.NoError(t, conn.Get(&descricao, conn.Rebind(`SELECT descricao FROM registros WHERE id = ?`), e.ID))
	assert.NotEqual(t, "um dia calmo", descricao)

	_, _, err = s.SaveEntry(ctx, p.ID, records.EntryInput{Date: "2026-10-15", MoodScore: 2})
	require.NoError(t, err)

	entries, err := s.Entries(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2026-10-16", entries[0].EntryDate)
	assert.Equal(t, "um dia calmo", entries[0].Reflection)
	assert.Equal(t, "família", entries[0].Gratitude1)

	require.NoError(t, s.Purge(ctx, p.ID))
	entries, err = s.Entries(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
