package accounts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"diario/internal/codec"
	"diario/internal/keyspace"
	"diario/internal/models"
	"diario/internal/store"
	"diario/internal/validation"
)

// Local keeps a global credentials index and one profile value per user in
// the key-value store.
type Local struct {
	kv  store.KV
	log *zap.Logger
	now func() time.Time

	// mu guards the credentials index, which every sign-up rewrites.
	mu sync.Mutex
}

func NewLocal(kv store.KV, log *zap.Logger) *Local {
	return &Local{kv: kv, log: log, now: func() time.Time { return time.Now().UTC() }}
}

var _ Accounts = (*Local)(nil)

var credentialsKey = keyspace.MustKeyFor("", keyspace.Credentials)

func (a *Local) credentials(ctx context.Context) ([]models.Credential, error) {
	text, ok, err := store.Read(ctx, a.kv, a.log, credentialsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Credential{}, nil
	}
	return codec.DecodeOrEmpty[models.Credential](a.log, credentialsKey, text), nil
}

func (a *Local) saveCredentials(ctx context.Context, creds []models.Credential) error {
	text, err := codec.Encode(creds)
	if err != nil {
		return err
	}
	return a.kv.Set(ctx, credentialsKey, text)
}

func findByEmail(creds []models.Credential, email string) int {
	for i, c := range creds {
		if c.Email == email {
			return i
		}
	}
	return -1
}

func (a *Local) SignUp(ctx context.Context, email, password, name string) (models.Profile, error) {
	email, err := ValidateSignUp(email, password, name)
	if err != nil {
		return models.Profile{}, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return models.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	creds, err := a.credentials(ctx)
	if err != nil {
		return models.Profile{}, err
	}
	if findByEmail(creds, email) >= 0 {
		return models.Profile{}, ErrDuplicateEmail
	}

	now := a.now()
	p := models.Profile{
		ID:                   uuid.NewString(),
		Name:                 strings.TrimSpace(name),
		Email:                email,
		WaterGoal:            models.DefaultWaterGoal,
		NotificationsEnabled: true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	creds = append(creds, models.Credential{UserID: p.ID, Email: email, PasswordHash: hash, CreatedAt: now})
	if err := a.saveCredentials(ctx, creds); err != nil {
		return models.Profile{}, fmt.Errorf("save credentials: %w", err)
	}
	if err := a.saveProfile(ctx, p); err != nil {
		// Without a profile the identity is unusable; drop the credential
		// so the email can register again.
		a.log.Error("profile write failed after credentials, rolling back",
			zap.String("user_id", p.ID), zap.Error(err))
		if rbErr := a.saveCredentials(ctx, creds[:len(creds)-1]); rbErr != nil {
			a.log.Error("credential rollback failed, identity orphaned",
				zap.String("user_id", p.ID), zap.Error(rbErr))
		}
		return models.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	a.log.Info("account created", zap.String("user_id", p.ID))
	return p, nil
}

func (a *Local) SignIn(ctx context.Context, email, password string) (models.Profile, error) {
	email = validation.NormalizeEmail(email)
	creds, err := a.credentials(ctx)
	if err != nil {
		return models.Profile{}, err
	}
	i := findByEmail(creds, email)
	if i < 0 {
		return models.Profile{}, ErrInvalidCredentials
	}
	if err := CheckPassword(creds[i].PasswordHash, password); err != nil {
		return models.Profile{}, err
	}
	return a.Profile(ctx, creds[i].UserID)
}

func (a *Local) Profile(ctx context.Context, userID string) (models.Profile, error) {
	key, err := keyspace.KeyFor(userID, keyspace.Profile)
	if err != nil {
		return models.Profile{}, err
	}
	text, ok, err := store.Read(ctx, a.kv, a.log, key)
	if err != nil {
		return models.Profile{}, err
	}
	if !ok {
		return models.Profile{}, ErrNotFound
	}
	p, ok, err := codec.DecodeOne[models.Profile](text)
	if err != nil {
		return models.Profile{}, fmt.Errorf("profile %s: %w", userID, err)
	}
	if !ok {
		return models.Profile{}, ErrNotFound
	}
	return p, nil
}

func (a *Local) saveProfile(ctx context.Context, p models.Profile) error {
	key, err := keyspace.KeyFor(p.ID, keyspace.Profile)
	if err != nil {
		return err
	}
	text, err := codec.EncodeOne(p)
	if err != nil {
		return err
	}
	return a.kv.Set(ctx, key, text)
}

func (a *Local) UpdateProfile(ctx context.Context, userID string, u ProfileUpdate) (models.Profile, error) {
	if err := u.Validate(); err != nil {
		return models.Profile{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.Profile(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	u.Apply(&p)
	p.UpdatedAt = a.now()
	if err := a.saveProfile(ctx, p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// DeleteAccount removes the credential and the profile. Records are purged
// separately by the record store.
func (a *Local) DeleteAccount(ctx context.Context, userID string) error {
	key, err := keyspace.KeyFor(userID, keyspace.Profile)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	creds, err := a.credentials(ctx)
	if err != nil {
		return err
	}
	kept := creds[:0]
	found := false
	for _, c := range creds {
		if c.UserID == userID {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return ErrNotFound
	}
	if err := a.saveCredentials(ctx, kept); err != nil {
		return err
	}
	if err := a.kv.Delete(ctx, key); err != nil {
		return err
	}
	a.log.Info("account deleted", zap.String("user_id", userID))
	return nil
}
