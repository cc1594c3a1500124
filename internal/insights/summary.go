package insights

import (
	"time"

	"diario/internal/models"
	"diario/internal/records"
)

// Summary feeds the home dashboard.
type Summary struct {
	Date             string                  `json:"date"`
	Today            *models.DailyEntry      `json:"today"`
	Water            WaterProgress           `json:"water"`
	Streak           int                     `json:"streak"`
	Weekly           []MoodPoint             `json:"weekly_moods"`
	Average          Average                 `json:"average_mood"`
	TopWords         []WordCount             `json:"top_words"`
	Highlight        *WordCount              `json:"highlight"`
	ReadyLetters     int                     `json:"ready_letters"`
	ActiveChallenges []records.ChallengeView `json:"active_challenges"`
}

// Summarize aggregates the user's records as seen on today.
func Summarize(profile models.Profile, entries []models.DailyEntry, challenges []records.ChallengeView, letters []records.LetterView, today time.Time) Summary {
	date := today.Format(models.DateLayout)
	p := Compute(entries, today)
	s := Summary{
		Date:             date,
		Streak:           p.Streak,
		Weekly:           p.Weekly,
		Average:          p.Average,
		TopWords:         p.TopWords,
		Highlight:        p.Highlight,
		ActiveChallenges: []records.ChallengeView{},
	}

	glasses := 0
	for i := range entries {
		if entries[i].EntryDate == date {
			e := entries[i]
			s.Today = &e
			glasses = e.WaterIntake
			break
		}
	}
	s.Water = Water(glasses, profile.WaterGoal)

	for _, l := range letters {
		if l.Status == models.LetterReady {
			s.ReadyLetters++
		}
	}
	for _, c := range challenges {
		if !c.Completed {
			s.ActiveChallenges = append(s.ActiveChallenges, c)
		}
	}
	return s
}
