// Package accounts holds identities, credentials and profile settings.
package accounts

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"diario/internal/models"
	"diario/internal/validation"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("account not found")
)

// Accounts is implemented by Local (key-value storage) and by the hosted
// adapter (relational tables).
type Accounts interface {
	SignUp(ctx context.Context, email, password, name string) (models.Profile, error)
	SignIn(ctx context.Context, email, password string) (models.Profile, error)
	Profile(ctx context.Context, userID string) (models.Profile, error)
	UpdateProfile(ctx context.Context, userID string, u ProfileUpdate) (models.Profile, error)
	DeleteAccount(ctx context.Context, userID string) error
}

// ProfileUpdate carries the fields to change; nil fields are left alone.
type ProfileUpdate struct {
	Name                 *string `json:"nome"`
	WaterGoal            *int    `json:"water_goal"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
	DarkModeEnabled      *bool   `json:"dark_mode_enabled"`
}

func (u ProfileUpdate) Validate() error {
	if u.Name != nil {
		if err := validation.ValidateName(strings.TrimSpace(*u.Name)); err != nil {
			return err
		}
	}
	if u.WaterGoal != nil {
		if err := validation.ValidateWaterGoal(*u.WaterGoal); err != nil {
			return err
		}
	}
	return nil
}

// Apply merges the update into p.
func (u ProfileUpdate) Apply(p *models.Profile) {
	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.WaterGoal != nil {
		p.WaterGoal = *u.WaterGoal
	}
	if u.NotificationsEnabled != nil {
		p.NotificationsEnabled = *u.NotificationsEnabled
	}
	if u.DarkModeEnabled != nil {
		p.DarkModeEnabled = *u.DarkModeEnabled
	}
}

// ValidateSignUp checks the sign-up form and returns the normalized email.
func ValidateSignUp(email, password, name string) (string, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return "", err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return "", err
	}
	if err := validation.ValidateName(strings.TrimSpace(name)); err != nil {
		return "", err
	}
	return email, nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword maps any mismatch to ErrInvalidCredentials.
func CheckPassword(hash, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}
