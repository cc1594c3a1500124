package records

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"diario/internal/catalog"
	"diario/internal/keyspace"
	"diario/internal/models"
	"diario/internal/validation"
)

type ImportResult struct {
	Entries    int `json:"entries"`
	Challenges int `json:"challenges"`
	Letters    int `json:"letters"`
	MealPlans  int `json:"meal_plans"`
}

// Export returns everything the user owns.
func (s *Store) Export(ctx context.Context, userID string) (models.Dataset, error) {
	var ds models.Dataset
	var err error
	if ds.Entries, err = s.Entries(ctx, userID); err != nil {
		return ds, err
	}
	key, err := keyspace.KeyFor(userID, keyspace.Challenges)
	if err != nil {
		return ds, err
	}
	if ds.Challenges, err = loadList[models.Challenge](ctx, s, key); err != nil {
		return ds, err
	}
	key = keyspace.MustKeyFor(userID, keyspace.Letters)
	if ds.Letters, err = loadList[models.FutureLetter](ctx, s, key); err != nil {
		return ds, err
	}
	if ds.MealPlans, err = s.MealPlans(ctx, userID); err != nil {
		return ds, err
	}
	return ds, nil
}

// Import merges a dataset exported from browser storage. Entries and meal
// plans upsert by date; challenges and letters are appended unless a record
// with the same id already exists, so importing twice changes nothing.
func (s *Store) Import(ctx context.Context, userID string, ds models.Dataset) (ImportResult, error) {
	var res ImportResult
	if err := validateDataset(ds); err != nil {
		return res, err
	}
	defer s.lock(userID)()

	for _, e := range ds.Entries {
		existing, ok, err := s.entries.Entry(ctx, userID, e.EntryDate)
		if err != nil {
			return res, err
		}
		now := s.now()
		e.ID = ""
		e.UserID = userID
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		e.UpdatedAt = now
		if ok && e.WaterIntake == 0 {
			e.WaterIntake = existing.WaterIntake
		}
		if _, _, err := s.entries.PutEntry(ctx, userID, e); err != nil {
			return res, fmt.Errorf("import entry %s: %w", e.EntryDate, err)
		}
		res.Entries++
	}

	n, err := s.importChallenges(ctx, userID, ds.Challenges)
	if err != nil {
		return res, err
	}
	res.Challenges = n

	if n, err = s.importLetters(ctx, userID, ds.Letters); err != nil {
		return res, err
	}
	res.Letters = n

	for _, p := range ds.MealPlans {
		in := MealPlanInput{Date: p.Date, Breakfast: p.Breakfast, Lunch: p.Lunch, AfternoonSnack: p.AfternoonSnack, Dinner: p.Dinner}
		if _, err := s.saveMealPlan(ctx, userID, in); err != nil {
			return res, fmt.Errorf("import meal plan %s: %w", p.Date, err)
		}
		res.MealPlans++
	}

	s.log.Info("dataset imported",
		zap.String("user_id", userID),
		zap.Int("entries", res.Entries),
		zap.Int("challenges", res.Challenges),
		zap.Int("letters", res.Letters),
		zap.Int("meal_plans", res.MealPlans),
	)
	return res, nil
}

func validateDataset(ds models.Dataset) error {
	for _, e := range ds.Entries {
		if _, err := validation.ParseDate("entry_date", e.EntryDate); err != nil {
			return err
		}
		if e.MoodScore != 0 {
			if err := validation.ValidateMood(e.MoodScore); err != nil {
				return err
			}
		}
		if e.WaterIntake < 0 || e.WaterIntake > MaxWaterIntake {
			return &validation.Error{Field: "water_intake", Message: fmt.Sprintf("water intake must be between 0 and %d", MaxWaterIntake)}
		}
	}
	for _, c := range ds.Challenges {
		if _, ok := catalog.LookupProgram(c.Type); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownChallenge, c.Type)
		}
	}
	for _, l := range ds.Letters {
		if _, err := validation.ParseDate("delivery_date", l.DeliveryDate); err != nil {
			return err
		}
	}
	for _, p := range ds.MealPlans {
		if _, err := validation.ParseDate("data", p.Date); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) importChallenges(ctx context.Context, userID string, in []models.Challenge) (int, error) {
	if len(in) == 0 {
		return 0, nil
	}
	key := keyspace.MustKeyFor(userID, keyspace.Challenges)
	challenges, err := loadList[models.Challenge](ctx, s, key)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, c := range in {
		if c.ID != "" && indexOf(challenges, func(x models.Challenge) bool { return x.ID == c.ID }) >= 0 {
			continue
		}
		if !c.Completed && indexOf(challenges, func(x models.Challenge) bool { return x.Type == c.Type && !x.Completed }) >= 0 {
			s.log.Warn("skipping second active enrollment", zap.String("user_id", userID), zap.String("challenge_type", c.Type))
			continue
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.UserID = userID
		s.normalizeChallenge(&c)
		challenges = append(challenges, c)
		added++
	}
	return added, saveList(ctx, s, key, challenges)
}

// normalizeChallenge makes an imported challenge look like one advanced
// here: day within the program, CompletedAt set exactly when completed.
func (s *Store) normalizeChallenge(c *models.Challenge) {
	p, _ := catalog.LookupProgram(c.Type)
	if c.StartDate.IsZero() {
		c.StartDate = s.now()
	}
	c.CurrentDay = min(max(c.CurrentDay, 1), p.Days)
	if !c.Completed {
		c.CompletedAt = nil
		return
	}
	c.CurrentDay = p.Days
	if c.CompletedAt == nil {
		now := s.now()
		c.CompletedAt = &now
	}
}

func (s *Store) importLetters(ctx context.Context, userID string, in []models.FutureLetter) (int, error) {
	if len(in) == 0 {
		return 0, nil
	}
	key := keyspace.MustKeyFor(userID, keyspace.Letters)
	letters, err := loadList[models.FutureLetter](ctx, s, key)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, l := range in {
		if l.ID != "" && indexOf(letters, func(x models.FutureLetter) bool { return x.ID == l.ID }) >= 0 {
			continue
		}
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		l.UserID = userID
		if l.CreatedAt.IsZero() {
			l.CreatedAt = s.now()
		}
		letters = append(letters, l)
		added++
	}
	return added, saveList(ctx, s, key, letters)
}

// Purge deletes every record under the user's namespace.
func (s *Store) Purge(ctx context.Context, userID string) error {
	if _, err := keyspace.KeyFor(userID, keyspace.Challenges); err != nil {
		return err
	}
	defer s.lock(userID)()

	if err := s.entries.DeleteEntries(ctx, userID); err != nil {
		return fmt.Errorf("purge entries: %w", err)
	}
	keys := []string{
		keyspace.MustKeyFor(userID, keyspace.DailyEntries),
		keyspace.MustKeyFor(userID, keyspace.Challenges),
		keyspace.MustKeyFor(userID, keyspace.Letters),
	}
	prefix, _ := keyspace.MealPlanPrefix(userID)
	plans, err := s.kv.Keys(ctx, prefix)
	if err != nil {
		return err
	}
	keys = append(keys, plans...)
	for _, k := range keys {
		if err := s.kv.Delete(ctx, k); err != nil {
			return fmt.Errorf("purge %s: %w", k, err)
		}
	}
	s.log.Info("user records purged", zap.String("user_id", userID), zap.Int("keys", len(keys)))
	return nil
}
