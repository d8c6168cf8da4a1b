package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"taskhub/services"
)

type contextKey string

const userKey contextKey = "userID"

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

// RequireAuth rejects the request with 401 before the handler runs
// unless a valid bearer token is presented. The verified user id is
// placed on the request context.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(w, "Missing or malformed authorization header")
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		userID, err := services.VerifyToken(tokenStr)
		if err != nil {
			unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// UserID retrieves the authenticated user id set by RequireAuth.
func UserID(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(userKey).(uuid.UUID)
	return id, ok
}
