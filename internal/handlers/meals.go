package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"diario/internal/catalog"
	mw "diario/internal/middleware"
	"diario/internal/records"
)

type MealHandler struct {
	records *records.Store
	log     *zap.Logger
}

func NewMealHandler(recs *records.Store, log *zap.Logger) *MealHandler {
	return &MealHandler{records: recs, log: log}
}

func (h *MealHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.records.MealPlan(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *MealHandler) Put(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Breakfast      string `json:"cafe_manha"`
		Lunch          string `json:"almoco"`
		AfternoonSnack string `json:"cafe_tarde"`
		Dinner         string `json:"jantar"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	p, err := h.records.SaveMealPlan(r.Context(), mw.UserID(r.Context()), records.MealPlanInput{
		Date:           chi.URLParam(r, "date"),
		Breakfast:      body.Breakfast,
		Lunch:          body.Lunch,
		AfternoonSnack: body.AfternoonSnack,
		Dinner:         body.Dinner,
	})
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Catalog lists the meal suggestions per slot. Public.
func (h *MealHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Meals())
}
