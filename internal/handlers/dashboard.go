package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"diario/internal/accounts"
	"diario/internal/insights"
	mw "diario/internal/middleware"
	"diario/internal/models"
	"diario/internal/records"
)

type DashboardHandler struct {
	accounts accounts.Accounts
	records  *records.Store
	log      *zap.Logger
	now      func() time.Time
}

func NewDashboardHandler(accts accounts.Accounts, recs *records.Store, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{accounts: accts, records: recs, log: log, now: time.Now}
}

// Get aggregates what the home screen shows.
// Accepts optional query param: local_date=YYYY-MM-DD to use as the user's "today".
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := mw.UserID(ctx)

	day, err := today(r, h.now)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	dayStr := day.Format(models.DateLayout)

	// A missing profile only loses the custom water goal.
	profile, err := h.accounts.Profile(ctx, userID)
	if err != nil {
		h.log.Warn("profile unavailable, using defaults", zap.String("user_id", userID), zap.Error(err))
		profile = models.Profile{ID: userID, WaterGoal: models.DefaultWaterGoal}
	}
	entries, err := h.records.Entries(ctx, userID)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	challenges, err := h.records.Challenges(ctx, userID)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	letters, err := h.records.Letters(ctx, userID, dayStr)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	writeJSON(w, http.StatusOK, insights.Summarize(profile, entries, challenges, letters, day))
}
