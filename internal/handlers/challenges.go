package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"diario/internal/catalog"
	mw "diario/internal/middleware"
	"diario/internal/records"
)

type ChallengeHandler struct {
	records *records.Store
	log     *zap.Logger
}

func NewChallengeHandler(recs *records.Store, log *zap.Logger) *ChallengeHandler {
	return &ChallengeHandler{records: recs, log: log}
}

func (h *ChallengeHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.records.Challenges(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ChallengeHandler) Start(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type string `json:"challenge_type"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	c, err := h.records.StartChallenge(r.Context(), mw.UserID(r.Context()), body.Type)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ChallengeHandler) Advance(w http.ResponseWriter, r *http.Request) {
	c, err := h.records.AdvanceChallenge(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Catalog lists the available programs. Public.
func (h *ChallengeHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Programs())
}
