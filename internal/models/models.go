package models

import "time"

// DateLayout is the calendar-date format used for every natural key.
const DateLayout = "2006-01-02"

const DefaultWaterGoal = 8

type Profile struct {
	ID                   string    `db:"id" json:"id"`
	Name                 string    `db:"nome" json:"nome"`
	Email                string    `db:"email" json:"email"` // Encrypted in the hosted tables
	EmailBlindIndex      string    `db:"email_blind_index" json:"-"`
	WaterGoal            int       `db:"water_goal" json:"water_goal"`
	NotificationsEnabled bool      `db:"notifications_enabled" json:"notifications_enabled"`
	DarkModeEnabled      bool      `db:"dark_mode_enabled" json:"dark_mode_enabled"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// Credential is one row of the credentials index.
type Credential struct {
	UserID       string    `db:"user_id" json:"user_id"`
	Email        string    `db:"-" json:"email"`
	BlindIndex   string    `db:"email_blind_index" json:"-"`
	PasswordHash string    `db:"password_hash" json:"password_hash"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DailyEntry is one calendar day of journal state. MoodScore 0 means the
// day only has water intake so far.
type DailyEntry struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"id_usuario" json:"user_id"`
	EntryDate   string    `db:"data" json:"entry_date"`
	MoodScore   int       `db:"humor" json:"mood_score"`
	Gratitude1  string    `db:"gratidao_1" json:"gratitude_1,omitempty"`
	Gratitude2  string    `db:"gratidao_2" json:"gratitude_2,omitempty"`
	Gratitude3  string    `db:"gratidao_3" json:"gratitude_3,omitempty"`
	Reflection  string    `db:"descricao" json:"reflection,omitempty"` // Encrypted in the hosted tables
	WaterIntake int       `db:"water_intake" json:"water_intake"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Texts returns the free-text fields that feed word insights.
func (e DailyEntry) Texts() []string {
	return []string{e.Gratitude1, e.Gratitude2, e.Gratitude3, e.Reflection}
}

type Challenge struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Type        string     `json:"challenge_type"`
	StartDate   time.Time  `json:"start_date"`
	CurrentDay  int        `json:"current_day"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

type LetterStatus string

const (
	LetterScheduled LetterStatus = "scheduled"
	LetterReady     LetterStatus = "ready"
	LetterRead      LetterStatus = "read"
)

type FutureLetter struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Content      string     `json:"content"`
	DeliveryDate string     `json:"delivery_date"`
	IsRead       bool       `json:"is_read"`
	CreatedAt    time.Time  `json:"created_at"`
	ReadAt       *time.Time `json:"read_at"`
}

// MealPlan is the cardápio for one day.
type MealPlan struct {
	UserID         string    `json:"user_id"`
	Date           string    `json:"data"`
	Breakfast      string    `json:"cafe_manha"`
	Lunch          string    `json:"almoco"`
	AfternoonSnack string    `json:"cafe_tarde"`
	Dinner         string    `json:"jantar"`
	TotalCalories  int       `json:"total_calorias"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Dataset is everything one user owns, as exported from or imported into
// the record store.
type Dataset struct {
	Entries    []DailyEntry   `json:"entries"`
	Challenges []Challenge    `json:"challenges"`
	Letters    []FutureLetter `json:"letters"`
	MealPlans  []MealPlan     `json:"meal_plans"`
}
