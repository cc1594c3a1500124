// Package keyspace derives storage keys for the record store.
package keyspace

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	Profile      Kind = "profile"
	Credentials  Kind = "users"
	DailyEntries Kind = "daily_entries"
	Challenges   Kind = "challenges"
	Letters      Kind = "letters"
	MealPlan     Kind = "cardapio"
	Sessions     Kind = "sessions"
)

const (
	Namespace = "diario"
	sep       = ":"
)

var ErrInvalidComponent = errors.New("invalid key component")

// KeyFor builds namespace:kind:userID[:discriminator]. Meal plans need the
// date as discriminator; the credentials index is global and takes no user.
func KeyFor(userID string, kind Kind, discriminator ...string) (string, error) {
	if kind == Credentials {
		return Namespace + sep + string(kind), nil
	}
	if err := check("user id", userID); err != nil {
		return "", err
	}
	parts := []string{Namespace, string(kind), userID}
	switch kind {
	case MealPlan:
		if len(discriminator) != 1 {
			return "", fmt.Errorf("%w: %s key needs a date", ErrInvalidComponent, kind)
		}
		if err := check("date", discriminator[0]); err != nil {
			return "", err
		}
		parts = append(parts, discriminator[0])
	case Profile, DailyEntries, Challenges, Letters, Sessions:
		if len(discriminator) != 0 {
			return "", fmt.Errorf("%w: %s key takes no discriminator", ErrInvalidComponent, kind)
		}
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidComponent, kind)
	}
	return strings.Join(parts, sep), nil
}

// MustKeyFor is KeyFor for ids that were already validated.
func MustKeyFor(userID string, kind Kind, discriminator ...string) string {
	k, err := KeyFor(userID, kind, discriminator...)
	if err != nil {
		panic(err)
	}
	return k
}

// MealPlanPrefix is the prefix shared by all of a user's meal plan keys.
func MealPlanPrefix(userID string) (string, error) {
	if err := check("user id", userID); err != nil {
		return "", err
	}
	return strings.Join([]string{Namespace, string(MealPlan), userID}, sep) + sep, nil
}

// DateOf extracts the date from a meal plan key.
func DateOf(key string) (string, bool) {
	parts := strings.Split(key, sep)
	if len(parts) != 4 || parts[1] != string(MealPlan) {
		return "", false
	}
	return parts[3], true
}

func check(what, v string) error {
	if v == "" {
		return fmt.Errorf("%w: empty %s", ErrInvalidComponent, what)
	}
	if strings.Contains(v, sep) {
		return fmt.Errorf("%w: %s contains %q", ErrInvalidComponent, what, sep)
	}
	return nil
}
