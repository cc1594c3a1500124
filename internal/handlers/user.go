package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"diario/internal/accounts"
	mw "diario/internal/middleware"
	"diario/internal/records"
	"diario/internal/session"
)

type UserHandler struct {
	accounts accounts.Accounts
	records  *records.Store
	sessions *session.Manager
	log      *zap.Logger
}

func NewUserHandler(accts accounts.Accounts, recs *records.Store, sessions *session.Manager, log *zap.Logger) *UserHandler {
	return &UserHandler{accounts: accts, records: recs, sessions: sessions, log: log}
}

// GetMe returns the current user's profile
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	p, err := h.accounts.Profile(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToProfileDTO(p))
}

// UpdateMe merges the provided fields into the current user's profile
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var u accounts.ProfileUpdate
	if !decodeJSON(w, r, &u) {
		return
	}
	p, err := h.accounts.UpdateProfile(r.Context(), mw.UserID(r.Context()), u)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToProfileDTO(p))
}

// DeleteMe erases the account. Records go first so a failed deletion can be
// retried with the same token.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := mw.UserID(ctx)
	if err := h.records.Purge(ctx, userID); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if err := h.accounts.DeleteAccount(ctx, userID); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if err := h.sessions.RevokeAll(ctx, userID); err != nil {
		h.log.Warn("session cleanup failed", zap.String("user_id", userID), zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}
