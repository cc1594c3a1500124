package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"diario/internal/accounts"
	"diario/internal/keyspace"
	"diario/internal/models"
	"diario/internal/records"
	"diario/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps domain errors to status codes. Anything unexpected is
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, log *zap.Logger, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		http.Error(w, verr.Error(), http.StatusBadRequest)
	case errors.Is(err, accounts.ErrDuplicateEmail):
		http.Error(w, "email already registered", http.StatusConflict)
	case errors.Is(err, accounts.ErrInvalidCredentials):
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, accounts.ErrNotFound), errors.Is(err, records.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, records.ErrUnknownChallenge), errors.Is(err, keyspace.ErrInvalidComponent):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, records.ErrChallengeActive),
		errors.Is(err, records.ErrChallengeCompleted),
		errors.Is(err, records.ErrLetterNotReady):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

// today is the user's calendar day: the local_date query parameter when the
// client sends one, otherwise the server's UTC date.
func today(r *http.Request, now func() time.Time) (time.Time, error) {
	if s := r.URL.Query().Get("local_date"); s != "" {
		return validation.ParseDate("local_date", s)
	}
	y, m, d := now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func todayString(r *http.Request, now func() time.Time) (string, error) {
	t, err := today(r, now)
	if err != nil {
		return "", err
	}
	return t.Format(models.DateLayout), nil
}
