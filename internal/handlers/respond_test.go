package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"diario/internal/accounts"
	"diario/internal/keyspace"
	"diario/internal/records"
	"diario/internal/validation"
)

func TestWriteErrorStatus(t *testing.T) {
	log := zaptest.NewLogger(t)
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &validation.Error{Field: "mood_score", Message: "out of range"}, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("save: %w", &validation.Error{Field: "date"}), http.StatusBadRequest},
		{"duplicate email", accounts.ErrDuplicateEmail, http.StatusConflict},
		{"bad credentials", accounts.ErrInvalidCredentials, http.StatusUnauthorized},
		{"missing account", accounts.ErrNotFound, http.StatusNotFound},
		{"missing record", fmt.Errorf("letter x: %w", records.ErrNotFound), http.StatusNotFound},
		{"unknown challenge", records.ErrUnknownChallenge, http.StatusBadRequest},
		{"bad key", keyspace.ErrInvalidComponent, http.StatusBadRequest},
		{"active challenge", records.ErrChallengeActive, http.StatusConflict},
		{"completed challenge", records.ErrChallengeCompleted, http.StatusConflict},
		{"letter not ready", records.ErrLetterNotReady, http.StatusConflict},
		{"storage failure", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, log, httptest.NewRequest(http.MethodGet, "/api/x", nil), tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, zaptest.NewLogger(t), httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: password=hunter2"))
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestToday(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 10, 16, 23, 30, 0, 0, time.FixedZone("BRT", -3*3600)) }

	d, err := todayString(httptest.NewRequest(http.MethodGet, "/", nil), now)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", d, "server default is the UTC date")

	d, err = todayString(httptest.NewRequest(http.MethodGet, "/?local_date=2026-10-16", nil), now)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16", d)

	_, err = today(httptest.NewRequest(http.MethodGet, "/?local_date=16/10/2026", nil), now)
	assert.True(t, validation.IsValidation(err))
}
