package records

import (
	"context"
	"time"

	"github.com/google/uuid"

	"diario/internal/catalog"
	"diario/internal/keyspace"
	"diario/internal/models"
)

// ChallengeView is a stored enrollment joined with its program.
type ChallengeView struct {
	models.Challenge
	Name      string `json:"name"`
	TotalDays int    `json:"total_days"`
	TodayTask string `json:"today_task"`
	Progress  int    `json:"progress_pct"`
}

func viewChallenge(c models.Challenge) ChallengeView {
	v := ChallengeView{Challenge: c}
	if p, ok := catalog.LookupProgram(c.Type); ok {
		v.Name = p.Name
		v.TotalDays = p.Days
		v.TodayTask = p.Task(c.CurrentDay)
		v.Progress = c.CurrentDay * 100 / p.Days
	}
	return v
}

// StartChallenge enrolls the user in a program. A second active enrollment
// of the same type is refused; completed ones do not count.
func (s *Store) StartChallenge(ctx context.Context, userID, challengeType string) (ChallengeView, error) {
	if _, ok := catalog.LookupProgram(challengeType); !ok {
		return ChallengeView{}, ErrUnknownChallenge
	}
	key, err := keyspace.KeyFor(userID, keyspace.Challenges)
	if err != nil {
		return ChallengeView{}, err
	}
	defer s.lock(userID)()

	challenges, err := loadList[models.Challenge](ctx, s, key)
	if err != nil {
		return ChallengeView{}, err
	}
	if indexOf(challenges, func(c models.Challenge) bool { return c.Type == challengeType && !c.Completed }) >= 0 {
		return ChallengeView{}, ErrChallengeActive
	}
	c := models.Challenge{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       challengeType,
		StartDate:  s.now(),
		CurrentDay: 1,
	}
	challenges = append(challenges, c)
	if err := saveList(ctx, s, key, challenges); err != nil {
		return ChallengeView{}, err
	}
	return viewChallenge(c), nil
}

// AdvanceChallenge marks the current day done. The day counter is capped at
// the program length; passing the last day completes the challenge and
// stamps CompletedAt, once.
func (s *Store) AdvanceChallenge(ctx context.Context, userID, challengeID string) (ChallengeView, error) {
	key, err := keyspace.KeyFor(userID, keyspace.Challenges)
	if err != nil {
		return ChallengeView{}, err
	}
	defer s.lock(userID)()

	challenges, err := loadList[models.Challenge](ctx, s, key)
	if err != nil {
		return ChallengeView{}, err
	}
	i := indexOf(challenges, func(c models.Challenge) bool { return c.ID == challengeID })
	if i < 0 {
		return ChallengeView{}, ErrNotFound
	}
	if challenges[i].Completed {
		return ChallengeView{}, ErrChallengeCompleted
	}
	p, ok := catalog.LookupProgram(challenges[i].Type)
	if !ok {
		return ChallengeView{}, ErrUnknownChallenge
	}
	advance(&challenges[i], p.Days, s.now())
	if err := saveList(ctx, s, key, challenges); err != nil {
		return ChallengeView{}, err
	}
	return viewChallenge(challenges[i]), nil
}

func advance(c *models.Challenge, totalDays int, now time.Time) {
	next := c.CurrentDay + 1
	c.CurrentDay = min(next, totalDays)
	if next > totalDays {
		c.Completed = true
		c.CompletedAt = &now
	}
}

// Challenges returns every enrollment in start order.
func (s *Store) Challenges(ctx context.Context, userID string) ([]ChallengeView, error) {
	key, err := keyspace.KeyFor(userID, keyspace.Challenges)
	if err != nil {
		return nil, err
	}
	challenges, err := loadList[models.Challenge](ctx, s, key)
	if err != nil {
		return nil, err
	}
	out := make([]ChallengeView, 0, len(challenges))
	for _, c := range challenges {
		out = append(out, viewChallenge(c))
	}
	return out, nil
}
