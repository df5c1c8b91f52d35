package middleware

import (
	"context"
	"net/http"
	"strings"

	"linkup/database"
)

type contextKey string

const UserContextKey contextKey = "user"

// Auth checks the bearer token (or the token query parameter used by
// websocket clients) and adds the user to the request context
func Auth(db *database.DB, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")

			tokenString := bearerToken(r)
			if tokenString == "" {
				http.Error(w, `{"detail": "Authentication credentials were not provided."}`, http.StatusUnauthorized)
				return
			}

			claims, err := ValidateToken(tokenString, secret)
			if err != nil {
				http.Error(w, `{"detail": "Invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			user, err := db.GetUserByID(claims.UserID)
			if err != nil {
				http.Error(w, `{"detail": "User not found"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(r *http.Request) *database.User {
	user, ok := r.Context().Value(UserContextKey).(*database.User)
	if !ok {
		return nil
	}
	return user
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
