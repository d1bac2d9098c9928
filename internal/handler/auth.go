package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/server/authctx"
	"cinelight-api/internal/service"
	"github.com/go-chi/chi/v5"
)

type Authenticator interface {
	Login(ctx context.Context, in service.LoginInput) (*service.AuthResult, error)
	Me(ctx context.Context, userID int64) (*domain.User, error)
}

type AuthHandler struct {
	Service Authenticator
	Errors  Errors
}

// RegisterRoutes mounts the public login route.
func (h AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.login)
}

func (h AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/auth/logout", h.logout)
	r.Get("/auth/me", h.me)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Service.Login(r.Context(), service.LoginInput{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	})
	if err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, "Login successful", map[string]any{
		"token":     res.AccessToken,
		"expiresAt": res.ExpiresAt.UTC().Format(time.RFC3339),
		"user":      userView(res.User),
	})
}

// logout is an acknowledgement only; tokens are stateless and expire on their own.
func (h AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, "Logout successful", nil)
}

func (h AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	u, err := h.Service.Me(r.Context(), user.ID)
	if err != nil {
		h.Errors.Write(w, r, err, "User")
		return
	}
	writeJSON(w, http.StatusOK, "Profile retrieved", userView(*u))
}
