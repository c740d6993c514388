package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	redisc "github.com/Kent0710/classroom-announcement-app/internal/redis"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UsernameKey  contextKey = "username"
	SessionIDKey contextKey = "session_id"
)

// JWTMiddleware authenticates requests. A token must both verify and have
// a live session in Redis, so logged-out tokens stop working before they
// expire.
func JWTMiddleware(jwtSecret string, rdb *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				writeError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			claims, err := ValidateToken(parts[1], jwtSecret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			valid, err := redisc.SessionValid(rdb, claims.ID)
			if err != nil {
				slog.Error("failed to check session", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !valid {
				writeError(w, http.StatusUnauthorized, "session expired")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UsernameKey, claims.Username)
			ctx = context.WithValue(ctx, SessionIDKey, claims.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
