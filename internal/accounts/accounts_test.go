package accounts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"diario/internal/models"
	"diario/internal/store"
	"diario/internal/validation"
)

func TestLocalSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	a := NewLocal(store.NewMemory(), zaptest.NewLogger(t))

	p, err := a.SignUp(ctx, "  Ana@Example.com ", "segredo1", "Ana")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "ana@example.com", p.Email)
	assert.Equal(t, models.DefaultWaterGoal, p.WaterGoal)
	assert.True(t, p.NotificationsEnabled)

	_, err = a.SignUp(ctx, "ana@example.com", "outra123", "Outra Ana")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	got, err := a.SignIn(ctx, "ANA@example.com", "segredo1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = a.SignIn(ctx, "ana@example.com", "errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.SignIn(ctx, "ninguem@example.com", "segredo1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLocalPasswordsAreHashed(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	a := NewLocal(kv, zaptest.NewLogger(t))
	_, err := a.SignUp(ctx, "bia@example.com", "segredo1", "Bia")
	require.NoError(t, err)

	text, ok, err := kv.Get(ctx, credentialsKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, text, "segredo1")
	assert.Contains(t, text, "$2a$")
}

func TestSignUpValidation(t *testing.T) {
	a := NewLocal(store.NewMemory(), zaptest.NewLogger(t))
	for _, tc := range []struct{ email, password, name string }{
		{"not-an-email", "segredo1", "Ana"},
		{"ana@example.com", "123", "Ana"},
		{"ana@example.com", "segredo1", "   "},
	} {
		_, err := a.SignUp(context.Background(), tc.email, tc.password, tc.name)
		assert.True(t, validation.IsValidation(err), "%+v", tc)
	}
}

func TestLocalUpdateProfile(t *testing.T) {
	ctx := context.Background()
	a := NewLocal(store.NewMemory(), zaptest.NewLogger(t))
	p, err := a.SignUp(ctx, "caio@example.com", "segredo1", "Caio")
	require.NoError(t, err)

	goal, dark, name := 10, true, " Caio Lima "
	updated, err := a.UpdateProfile(ctx, p.ID, ProfileUpdate{WaterGoal: &goal, DarkModeEnabled: &dark, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.WaterGoal)
	assert.True(t, updated.DarkModeEnabled)
	assert.True(t, updated.NotificationsEnabled, "untouched fields keep their value")
	assert.Equal(t, "Caio Lima", updated.Name)
	assert.False(t, updated.UpdatedAt.Before(p.UpdatedAt))

	bad := 0
	_, err = a.UpdateProfile(ctx, p.ID, ProfileUpdate{WaterGoal: &bad})
	assert.True(t, validation.IsValidation(err))

	_, err = a.UpdateProfile(ctx, "missing", ProfileUpdate{DarkModeEnabled: &dark})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalDeleteAccount(t *testing.T) {
	ctx := context.Background()
	a := NewLocal(store.NewMemory(), zaptest.NewLogger(t))
	p, err := a.SignUp(ctx, "duda@example.com", "segredo1", "Duda")
	require.NoError(t, err)
	_, err = a.SignUp(ctx, "edu@example.com", "segredo1", "Edu")
	require.NoError(t, err)

	require.NoError(t, a.DeleteAccount(ctx, p.ID))
	_, err = a.Profile(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = a.SignIn(ctx, "duda@example.com", "segredo1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.SignIn(ctx, "edu@example.com", "segredo1")
	require.NoError(t, err)
	assert.ErrorIs(t, a.DeleteAccount(ctx, p.ID), ErrNotFound)

	// The email is free again.
	_, err = a.SignUp(ctx, "duda@example.com", "segredo2", "Duda")
	require.NoError(t, err)
}

// failingProfiles rejects writes of profile values.
type failingProfiles struct {
	*store.Memory
}

func (f failingProfiles) Set(ctx context.Context, key, value string) error {
	if strings.Contains(key, ":profile:") {
		return errors.New("disk full")
	}
	return f.Memory.Set(ctx, key, value)
}

func TestLocalSignUpRollsBackCredentialOnProfileFailure(t *testing.T) {
	ctx := context.Background()
	a := NewLocal(failingProfiles{store.NewMemory()}, zaptest.NewLogger(t))

	_, err := a.SignUp(ctx, "fabi@example.com", "segredo1", "Fabi")
	require.Error(t, err)

	creds, err := a.credentials(ctx)
	require.NoError(t, err)
	assert.Empty(t, creds)
}
