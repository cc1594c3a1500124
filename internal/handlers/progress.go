package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"diario/internal/insights"
	mw "diario/internal/middleware"
	"diario/internal/records"
)

type ProgressHandler struct {
	records *records.Store
	log     *zap.Logger
	now     func() time.Time
}

func NewProgressHandler(recs *records.Store, log *zap.Logger) *ProgressHandler {
	return &ProgressHandler{records: recs, log: log, now: time.Now}
}

type progressResponse struct {
	ReferenceDate string `json:"reference_date"`
	insights.Progress
}

// Get returns streak, weekly moods, average mood and top words.
// Accepts optional query param: local_date=YYYY-MM-DD to use as the user's "today".
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	day, err := today(r, h.now)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	entries, err := h.records.Entries(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progressResponse{
		ReferenceDate: day.Format("2006-01-02"),
		Progress:      insights.Compute(entries, day),
	})
}
