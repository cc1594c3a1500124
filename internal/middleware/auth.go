package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"diario/internal/models"
	"diario/internal/session"
)

type contextKey string

const (
	sessionKey contextKey = "session"
	holderKey  contextKey = "user_holder"
)

// userHolder lets middleware that wraps RequireAuth see who was
// authenticated once the request is done.
type userHolder struct {
	userID string
}

func withUserHolder(ctx context.Context, h *userHolder) context.Context {
	return context.WithValue(ctx, holderKey, h)
}

// WithSession stores the authenticated session on ctx.
func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// Session returns the session RequireAuth attached to the request.
func Session(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey).(models.Session)
	return s, ok
}

// UserID is the authenticated user, or "" outside RequireAuth.
func UserID(ctx context.Context) string {
	s, _ := Session(ctx)
	return s.UserID
}

type AuthMiddleware struct {
	sessions *session.Manager
	log      *zap.Logger
}

func NewAuthMiddleware(sessions *session.Manager, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, log: log}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		s, err := m.sessions.Verify(r.Context(), strings.TrimPrefix(authz, "Bearer "))
		if err != nil {
			if !errors.Is(err, session.ErrInvalidToken) {
				m.log.Error("session lookup failed", zap.Error(err))
				http.Error(w, "server error", http.StatusInternalServerError)
				return
			}
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		if h, ok := r.Context().Value(holderKey).(*userHolder); ok {
			h.userID = s.UserID
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}
