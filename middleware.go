package soulauth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const userIDKey contextKey = "loggedInUserId"

// Middleware authenticates requests carrying the bearer token issued
// at login. It only reads the Authorization header; there are no
// session cookies to fall back on.
type Middleware struct {
	VerifyToken func(tokenString string) (userID string, err error)
}

// RequireUser rejects requests without a valid bearer token and makes
// the verified user id available to downstream handlers via UserID.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := m.userIDFromRequest(r)
		if userID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "Not authenticated"}`))
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) userIDFromRequest(r *http.Request) string {
	if m.VerifyToken == nil {
		return ""
	}
	for _, header := range r.Header.Values("Authorization") {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			continue
		}
		userID, err := m.VerifyToken(strings.TrimSpace(token))
		if err == nil && userID != "" {
			return userID
		}
	}
	return ""
}

// UserID returns the authenticated user id set by RequireUser, or ""
// for unauthenticated requests.
func UserID(r *http.Request) string {
	if v, ok := r.Context().Value(userIDKey).(string); ok {
		return v
	}
	return ""
}
