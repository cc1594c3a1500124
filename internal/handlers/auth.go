package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"diario/internal/accounts"
	mw "diario/internal/middleware"
	"diario/internal/session"
)

type AuthHandler struct {
	accounts accounts.Accounts
	sessions *session.Manager
	log      *zap.Logger
}

func NewAuthHandler(accts accounts.Accounts, sessions *session.Manager, log *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accts, sessions: sessions, log: log}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"nome"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if !decodeJSON(w, r, &c) {
		return
	}
	p, err := h.accounts.SignUp(r.Context(), c.Email, c.Password, c.Name)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	token, s, err := h.sessions.Issue(r.Context(), p.ID)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionDTO(token, s, &p))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if !decodeJSON(w, r, &c) {
		return
	}
	if c.Email == "" || c.Password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}
	p, err := h.accounts.SignIn(r.Context(), c.Email, c.Password)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	token, s, err := h.sessions.Issue(r.Context(), p.ID)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(token, s, &p))
}

// Logout revokes the calling session. It always succeeds for a valid token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s, _ := mw.Session(r.Context())
	if err := h.sessions.Revoke(r.Context(), s.UserID, s.ID); err != nil {
		h.log.Warn("session revoke failed", zap.String("user_id", s.UserID), zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session reports the current identity. A profile that cannot be loaded is
// returned as null rather than failing the request.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	s, _ := mw.Session(r.Context())
	resp := struct {
		UserID    string      `json:"user_id"`
		SessionID string      `json:"session_id"`
		ExpiresAt string      `json:"expires_at"`
		Profile   *ProfileDTO `json:"profile"`
	}{
		UserID:    s.UserID,
		SessionID: s.ID,
		ExpiresAt: toSessionDTO("", s, nil).ExpiresAt,
	}
	p, err := h.accounts.Profile(r.Context(), s.UserID)
	if err != nil {
		h.log.Warn("profile unavailable", zap.String("user_id", s.UserID), zap.Error(err))
	} else {
		dto := ToProfileDTO(p)
		resp.Profile = &dto
	}
	writeJSON(w, http.StatusOK, resp)
}
