package handlers

import (
	"net/http"

	"go.uber.org/zap"

	mw "diario/internal/middleware"
	"diario/internal/models"
	"diario/internal/records"
)

type MigrateHandler struct {
	records *records.Store
	log     *zap.Logger
}

func NewMigrateHandler(recs *records.Store, log *zap.Logger) *MigrateHandler {
	return &MigrateHandler{records: recs, log: log}
}

// MigrateData godoc
// @Summary Import browser data
// @Description Merges a dataset exported from browser storage into the authenticated user's records
// @Tags migrate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body models.Dataset true "Exported dataset"
// @Success 201 {object} records.ImportResult "Counts of imported records"
// @Failure 400 {string} string "Bad request"
// @Failure 500 {string} string "Internal server error"
// @Router /migrate [post]
func (h *MigrateHandler) MigrateData(w http.ResponseWriter, r *http.Request) {
	var ds models.Dataset
	if !decodeJSON(w, r, &ds) {
		return
	}
	if len(ds.Entries)+len(ds.Challenges)+len(ds.Letters)+len(ds.MealPlans) == 0 {
		http.Error(w, "no records provided", http.StatusBadRequest)
		return
	}
	res, err := h.records.Import(r.Context(), mw.UserID(r.Context()), ds)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Export godoc
// @Summary Export all records
// @Tags migrate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Dataset
// @Router /export [get]
func (h *MigrateHandler) Export(w http.ResponseWriter, r *http.Request) {
	ds, err := h.records.Export(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="diario-export.json"`)
	writeJSON(w, http.StatusOK, ds)
}
