package records

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"diario/internal/catalog"
	"diario/internal/codec"
	"diario/internal/keyspace"
	"diario/internal/models"
	"diario/internal/store"
	"diario/internal/validation"
)

type MealPlanInput struct {
	Date           string
	Breakfast      string
	Lunch          string
	AfternoonSnack string
	Dinner         string
}

// TotalCalories sums the suggestion calories of each slot; free text counts
// as zero.
func TotalCalories(p models.MealPlan) int {
	return catalog.Calories(catalog.Breakfast, p.Breakfast) +
		catalog.Calories(catalog.Lunch, p.Lunch) +
		catalog.Calories(catalog.AfternoonSnack, p.AfternoonSnack) +
		catalog.Calories(catalog.Dinner, p.Dinner)
}

// SaveMealPlan upserts the plan stored directly under the user's date key.
func (s *Store) SaveMealPlan(ctx context.Context, userID string, in MealPlanInput) (models.MealPlan, error) {
	if _, err := validation.ParseDate("data", in.Date); err != nil {
		return models.MealPlan{}, err
	}
	defer s.lock(userID)()
	return s.saveMealPlan(ctx, userID, in)
}

func (s *Store) saveMealPlan(ctx context.Context, userID string, in MealPlanInput) (models.MealPlan, error) {
	key, err := keyspace.KeyFor(userID, keyspace.MealPlan, in.Date)
	if err != nil {
		return models.MealPlan{}, err
	}
	prev, ok, err := s.loadMealPlan(ctx, key)
	if err != nil {
		return models.MealPlan{}, err
	}
	now := s.now()
	p := models.MealPlan{
		UserID:         userID,
		Date:           in.Date,
		Breakfast:      strings.TrimSpace(in.Breakfast),
		Lunch:          strings.TrimSpace(in.Lunch),
		AfternoonSnack: strings.TrimSpace(in.AfternoonSnack),
		Dinner:         strings.TrimSpace(in.Dinner),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if ok {
		p.CreatedAt = prev.CreatedAt
	}
	p.TotalCalories = TotalCalories(p)

	text, err := codec.EncodeOne(p)
	if err != nil {
		return models.MealPlan{}, err
	}
	if err := s.kv.Set(ctx, key, text); err != nil {
		return models.MealPlan{}, fmt.Errorf("persist %s: %w", key, err)
	}
	return p, nil
}

func (s *Store) loadMealPlan(ctx context.Context, key string) (models.MealPlan, bool, error) {
	text, ok, err := store.Read(ctx, s.kv, s.log, key)
	if err != nil || !ok {
		return models.MealPlan{}, false, err
	}
	p, ok, err := codec.DecodeOne[models.MealPlan](text)
	if err != nil {
		s.log.Warn("stored meal plan unreadable, treating as empty", zap.String("key", key), zap.Error(err))
		return models.MealPlan{}, false, nil
	}
	return p, ok, nil
}

// MealPlan returns the plan for date, or an empty plan when none was saved.
func (s *Store) MealPlan(ctx context.Context, userID, date string) (models.MealPlan, error) {
	if _, err := validation.ParseDate("data", date); err != nil {
		return models.MealPlan{}, err
	}
	key, err := keyspace.KeyFor(userID, keyspace.MealPlan, date)
	if err != nil {
		return models.MealPlan{}, err
	}
	p, ok, err := s.loadMealPlan(ctx, key)
	if err != nil {
		return models.MealPlan{}, err
	}
	if !ok {
		return models.MealPlan{UserID: userID, Date: date}, nil
	}
	return p, nil
}

// MealPlans returns every saved plan, oldest first.
func (s *Store) MealPlans(ctx context.Context, userID string) ([]models.MealPlan, error) {
	prefix, err := keyspace.MealPlanPrefix(userID)
	if err != nil {
		return nil, err
	}
	keys, err := s.kv.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]models.MealPlan, 0, len(keys))
	for _, key := range keys {
		p, ok, err := s.loadMealPlan(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}
