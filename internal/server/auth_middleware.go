package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/security"
	"cinelight-api/internal/server/authctx"
	"cinelight-api/internal/service"
)

// TokenAuthenticator resolves a bearer token to an active user.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// AuthMiddleware validates the bearer token, re-loads the user and sets it in context.
func AuthMiddleware(auth TokenAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, security.ErrExpiredToken):
					writeAuthError(w, http.StatusUnauthorized, "Token expired")
				case errors.Is(err, service.ErrAccountDisabled):
					writeAuthError(w, http.StatusUnauthorized, "Your account has been deactivated. Please contact administrator.")
				case errors.Is(err, security.ErrInvalidToken), errors.Is(err, service.ErrInvalidToken):
					writeAuthError(w, http.StatusUnauthorized, "Invalid token")
				default:
					writeAuthError(w, http.StatusUnauthorized, "Unauthorized")
				}
				return
			}
			ctx := authctx.WithCurrentUser(r.Context(), authctx.CurrentUser{
				ID:       user.ID,
				Username: user.Username,
				Role:     user.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole ensures the user has one of the allowed roles.
func RequireRole(roles ...domain.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[domain.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := authctx.FromContext(r.Context())
			if u == nil {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := allowed[u.Role]; !ok {
				writeAuthError(w, http.StatusForbidden, "Forbidden: Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    false,
		"message":   message,
		"errorCode": status,
	})
}
