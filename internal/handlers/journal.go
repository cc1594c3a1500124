package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	mw "diario/internal/middleware"
	"diario/internal/records"
)

type JournalHandler struct {
	records *records.Store
	log     *zap.Logger
	now     func() time.Time
}

func NewJournalHandler(recs *records.Store, log *zap.Logger) *JournalHandler {
	return &JournalHandler{records: recs, log: log, now: time.Now}
}

type journalRequest struct {
	EntryDate  string `json:"entry_date"` // YYYY-MM-DD; defaults to today
	MoodScore  int    `json:"mood_score"`
	Gratitude1 string `json:"gratitude_1"`
	Gratitude2 string `json:"gratitude_2"`
	Gratitude3 string `json:"gratitude_3"`
	Reflection string `json:"reflection"`
}

// UpsertEntry creates the day's entry or replaces it, keeping water intake
func (h *JournalHandler) UpsertEntry(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.EntryDate == "" {
		d, err := todayString(r, h.now)
		if err != nil {
			writeError(w, h.log, r, err)
			return
		}
		req.EntryDate = d
	}
	e, replaced, err := h.records.SaveEntry(r.Context(), mw.UserID(r.Context()), records.EntryInput{
		Date:       req.EntryDate,
		MoodScore:  req.MoodScore,
		Gratitude1: req.Gratitude1,
		Gratitude2: req.Gratitude2,
		Gratitude3: req.Gratitude3,
		Reflection: req.Reflection,
	})
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entry":     e,
		"is_update": replaced,
	})
}

func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.records.Entries(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.records.Entry(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

type waterRequest struct {
	Date    string `json:"date"`
	Glasses *int   `json:"glasses"` // defaults to one glass; negative undoes
}

func (h *JournalHandler) AddWater(w http.ResponseWriter, r *http.Request) {
	var req waterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	glasses := 1
	if req.Glasses != nil {
		glasses = *req.Glasses
	}
	if req.Date == "" {
		d, err := todayString(r, h.now)
		if err != nil {
			writeError(w, h.log, r, err)
			return
		}
		req.Date = d
	}
	e, err := h.records.AddWater(r.Context(), mw.UserID(r.Context()), req.Date, glasses)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
