package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	mw "diario/internal/middleware"
	"diario/internal/records"
)

type LetterHandler struct {
	records *records.Store
	log     *zap.Logger
	now     func() time.Time
}

func NewLetterHandler(recs *records.Store, log *zap.Logger) *LetterHandler {
	return &LetterHandler{records: recs, log: log, now: time.Now}
}

func (h *LetterHandler) List(w http.ResponseWriter, r *http.Request) {
	day, err := todayString(r, h.now)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	out, err := h.records.Letters(r.Context(), mw.UserID(r.Context()), day)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *LetterHandler) Write(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content      string `json:"content"`
		DeliveryDate string `json:"delivery_date"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	day, err := todayString(r, h.now)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	l, err := h.records.WriteLetter(r.Context(), mw.UserID(r.Context()), body.Content, body.DeliveryDate, day)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *LetterHandler) Read(w http.ResponseWriter, r *http.Request) {
	day, err := todayString(r, h.now)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	l, err := h.records.ReadLetter(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id"), day)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}
