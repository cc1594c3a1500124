// Package insights derives progress views from a user's daily entries.
// Everything here is pure: callers load the records and pass "today".
package insights

import (
	"math"
	"sort"
	"time"

	"diario/internal/models"
)

var weekdayLabels = [7]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Streak counts consecutive calendar days ending today that have an entry.
// A missing entry for today means a streak of zero.
func Streak(entries []models.DailyEntry, today time.Time) int {
	days := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		days[e.EntryDate] = struct{}{}
	}
	day := midnight(today)
	n := 0
	for n < len(days) {
		if _, ok := days[day.AddDate(0, 0, -n).Format(models.DateLayout)]; !ok {
			break
		}
		n++
	}
	return n
}

type MoodPoint struct {
	Date  string `json:"entry_date"`
	Label string `json:"label"`
	Score int    `json:"mood_score"`
}

// WeeklyMoods returns the moods of the seven most recent journaled entries in
// chronological order. Labels count back from today's weekday by position.
func WeeklyMoods(entries []models.DailyEntry, today time.Time) []MoodPoint {
	journaled := make([]models.DailyEntry, 0, len(entries))
	for _, e := range entries {
		if e.MoodScore > 0 {
			journaled = append(journaled, e)
		}
	}
	sort.SliceStable(journaled, func(i, j int) bool { return journaled[i].EntryDate > journaled[j].EntryDate })
	if len(journaled) > 7 {
		journaled = journaled[:7]
	}

	n := len(journaled)
	wd := int(today.Weekday())
	out := make([]MoodPoint, n)
	for i := range out {
		e := journaled[n-1-i]
		out[i] = MoodPoint{
			Date:  e.EntryDate,
			Label: weekdayLabels[((wd-(n-1-i))%7+7)%7],
			Score: e.MoodScore,
		}
	}
	return out
}

type Tier string

const (
	TierGreat  Tier = "great"
	TierSteady Tier = "steady"
	TierGentle Tier = "gentle"
)

var tierMessages = map[Tier]string{
	TierGreat:  "Você está muito bem!",
	TierSteady: "Continue cuidando de você.",
	TierGentle: "Lembre-se de ser gentil consigo mesmo.",
}

type Average struct {
	Value   float64 `json:"value"`
	Tier    Tier    `json:"tier"`
	Message string  `json:"message"`
}

// AverageMood is the series mean rounded to one decimal.
func AverageMood(series []MoodPoint) Average {
	var avg float64
	if len(series) > 0 {
		sum := 0
		for _, p := range series {
			sum += p.Score
		}
		avg = math.Round(float64(sum)/float64(len(series))*10) / 10
	}
	tier := TierGentle
	switch {
	case avg >= 4:
		tier = TierGreat
	case avg >= 3:
		tier = TierSteady
	}
	return Average{Value: avg, Tier: tier, Message: tierMessages[tier]}
}

type WaterProgress struct {
	Glasses int `json:"glasses"`
	Goal    int `json:"goal"`
	Percent int `json:"percent"`
}

// Water reports intake against the daily goal, capped at 100%.
func Water(glasses, goal int) WaterProgress {
	if goal <= 0 {
		goal = models.DefaultWaterGoal
	}
	return WaterProgress{Glasses: glasses, Goal: goal, Percent: min(100, glasses*100/goal)}
}

// Progress is the full progress screen.
type Progress struct {
	Streak    int         `json:"streak"`
	Weekly    []MoodPoint `json:"weekly_moods"`
	Average   Average     `json:"average_mood"`
	TopWords  []WordCount `json:"top_words"`
	Highlight *WordCount  `json:"highlight"`
}

// Compute builds the progress views from entries in any order.
func Compute(entries []models.DailyEntry, today time.Time) Progress {
	sorted := make([]models.DailyEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].EntryDate > sorted[j].EntryDate })

	weekly := WeeklyMoods(sorted, today)
	top := TopWords(sorted)
	p := Progress{
		Streak:   Streak(sorted, today),
		Weekly:   weekly,
		Average:  AverageMood(weekly),
		TopWords: top,
	}
	if w, ok := Highlight(top); ok {
		p.Highlight = &w
	}
	return p
}
