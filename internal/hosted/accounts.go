// Package hosted implements the account and journal contracts on the
// relational tables (usuarios, credenciais, registros). Emails and
// reflections are encrypted at rest; emails are looked up by blind index.
package hosted

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"diario/internal/accounts"
	"diario/internal/models"
	"diario/internal/services"
	"diario/internal/validation"
)

type Accounts struct {
	db     *sqlx.DB
	encSvc *services.EncryptionService
	log    *zap.Logger
	now    func() time.Time
}

var _ accounts.Accounts = (*Accounts)(nil)

func NewAccounts(db *sqlx.DB, encSvc *services.EncryptionService, log *zap.Logger) *Accounts {
	return &Accounts{db: db, encSvc: encSvc, log: log, now: func() time.Time { return time.Now().UTC() }}
}

const profileColumns = `id, nome, email, email_blind_index, water_goal, notifications_enabled, dark_mode_enabled, created_at, updated_at`

// SignUp writes the profile and the credential in one transaction, so a
// failed sign-up never leaves half an identity behind.
func (a *Accounts) SignUp(ctx context.Context, email, password, name string) (models.Profile, error) {
	email, err := accounts.ValidateSignUp(email, password, name)
	if err != nil {
		return models.Profile{}, err
	}
	hash, err := accounts.HashPassword(password)
	if err != nil {
		return models.Profile{}, fmt.Errorf("hash password: %w", err)
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
	row := p
	if err := a.encSvc.EncryptProfile(&row); err != nil {
		return models.Profile{}, fmt.Errorf("encrypt profile: %w", err)
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Profile{}, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM credenciais WHERE email_blind_index = ?`), row.EmailBlindIndex)
	if err != nil {
		return models.Profile{}, fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return models.Profile{}, accounts.ErrDuplicateEmail
	}

	_, err = tx.NamedExecContext(ctx, `INSERT INTO usuarios (`+profileColumns+`)
		VALUES (:id, :nome, :email, :email_blind_index, :water_goal, :notifications_enabled, :dark_mode_enabled, :created_at, :updated_at)`, row)
	if isUniqueViolation(err) {
		return models.Profile{}, accounts.ErrDuplicateEmail
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("insert usuario: %w", err)
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO credenciais (user_id, email_blind_index, password_hash, created_at) VALUES (?, ?, ?, ?)`),
		p.ID, row.EmailBlindIndex, hash, now)
	if isUniqueViolation(err) {
		return models.Profile{}, accounts.ErrDuplicateEmail
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("insert credencial: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Profile{}, err
	}
	a.log.Info("account created", zap.String("user_id", p.ID))
	return p, nil
}

// isUniqueViolation reports a UNIQUE or PRIMARY KEY conflict. Two sign-ups
// racing on one email both pass the COUNT check; the loser lands here.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}

func (a *Accounts) SignIn(ctx context.Context, email, password string) (models.Profile, error) {
	index := a.encSvc.EmailBlindIndex(validation.NormalizeEmail(email))
	var cred models.Credential
	err := a.db.GetContext(ctx, &cred,
		a.db.Rebind(`SELECT user_id, email_blind_index, password_hash, created_at FROM credenciais WHERE email_blind_index = ?`), index)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, accounts.ErrInvalidCredentials
	}
	if err != nil {
		return models.Profile{}, err
	}
	if err := accounts.CheckPassword(cred.PasswordHash, password); err != nil {
		return models.Profile{}, err
	}
	return a.Profile(ctx, cred.UserID)
}

func (a *Accounts) Profile(ctx context.Context, userID string) (models.Profile, error) {
	var p models.Profile
	err := a.db.GetContext(ctx, &p, a.db.Rebind(`SELECT `+profileColumns+` FROM usuarios WHERE id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, accounts.ErrNotFound
	}
	if err != nil {
		return models.Profile{}, err
	}
	if err := a.encSvc.DecryptProfile(&p); err != nil {
		return models.Profile{}, fmt.Errorf("decrypt profile %s: %w", userID, err)
	}
	return p, nil
}

func (a *Accounts) UpdateProfile(ctx context.Context, userID string, u accounts.ProfileUpdate) (models.Profile, error) {
	if err := u.Validate(); err != nil {
		return models.Profile{}, err
	}
	p, err := a.Profile(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	u.Apply(&p)
	p.UpdatedAt = a.now()
	_, err = a.db.NamedExecContext(ctx, `UPDATE usuarios
		SET nome = :nome,
		    water_goal = :water_goal,
		    notifications_enabled = :notifications_enabled,
		    dark_mode_enabled = :dark_mode_enabled,
		    updated_at = :updated_at
		WHERE id = :id`, p)
	if err != nil {
		return models.Profile{}, fmt.Errorf("update usuario: %w", err)
	}
	return p, nil
}

// DeleteAccount removes the user's rows from every hosted table.
func (a *Accounts) DeleteAccount(ctx context.Context, userID string) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM registros WHERE id_usuario = ?`,
		`DELETE FROM credenciais WHERE user_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, tx.Rebind(q), userID); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM usuarios WHERE id = ?`), userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return accounts.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	a.log.Info("account deleted", zap.String("user_id", userID))
	return nil
}
