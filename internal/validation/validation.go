package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"diario/internal/models"
)

// Error is a recoverable input problem shown next to the offending field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a *Error.
func IsValidation(err error) bool {
	var v *Error
	return errors.As(err, &v)
}

// NormalizeEmail lower-cases and trims, the form emails are indexed under.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if email == "" {
		return invalid("email", "email address is required")
	}
	if len(email) > 254 {
		return invalid("email", "email address is too long (max 254 characters)")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid("email", "invalid email address format")
	}
	return nil
}

// ValidatePassword enforces 6..72 bytes; bcrypt ignores anything past 72.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return invalid("password", "password must be at least 6 characters")
	}
	if len(password) > 72 {
		return invalid("password", "password must not exceed 72 characters")
	}
	return nil
}

func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invalid("name", "name is required")
	}
	if len(trimmed) > 100 {
		return invalid("name", "name is too long (max 100 characters)")
	}
	return nil
}

func ValidateMood(score int) error {
	if score < 1 || score > 5 {
		return invalid("mood_score", "mood score must be between 1 and 5")
	}
	return nil
}

func ValidateWaterGoal(goal int) error {
	if goal < 1 || goal > 30 {
		return invalid("water_goal", "water goal must be between 1 and 30 glasses")
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(field, s string) (time.Time, error) {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, invalid(field, "invalid date %q; expected YYYY-MM-DD", s)
	}
	return d, nil
}
