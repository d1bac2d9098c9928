package handler

import (
	"context"
	"net/http"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/pagination"
	"cinelight-api/internal/repository"
	"cinelight-api/internal/service"
	"github.com/go-chi/chi/v5"
)

type UserManager interface {
	Create(ctx context.Context, in service.CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, f repository.UserFilter, p pagination.Params) (pagination.Page[domain.User], error)
	Update(ctx context.Context, id int64, in service.UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type UserHandler struct {
	Service UserManager
	Errors  Errors
}

func (h UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.list)
	r.Post("/users", h.create)
	r.Get("/users/{id}", h.get)
	r.Put("/users/{id}", h.update)
	r.Delete("/users/{id}", h.delete)
}

type createUserRequest struct {
	Username  string  `json:"username" validate:"required,max=100"`
	Password  string  `json:"password" validate:"required,min=4"`
	Email     string  `json:"email" validate:"omitempty,email"`
	FirstName string  `json:"firstName" validate:"max=100"`
	LastName  string  `json:"lastName" validate:"max=100"`
	IsActive  *bool   `json:"isActive"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin user"`
}

type updateUserRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=1,max=100"`
	Password  *string `json:"password" validate:"omitempty,min=4"`
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	IsActive  *bool   `json:"isActive"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin user"`
}

func (h UserHandler) list(w http.ResponseWriter, r *http.Request) {
	active, ok := activeFilter(w, r)
	if !ok {
		return
	}
	page, err := h.Service.List(r.Context(), repository.UserFilter{
		IsActive: active,
		Role:     r.URL.Query().Get("role"),
	}, pagination.FromQuery(r.URL.Query()))
	if err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writePage(w, "Users retrieved", mapSlice(page.Items, userView), page.Meta)
}

func (h UserHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decode(w, r, &req) {
		return
	}
	in := service.CreateUserInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
	}
	if req.Role != nil {
		in.Role = domain.UserRole(*req.Role)
	}
	u, err := h.Service.Create(r.Context(), in)
	if err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, "User created", userView(*u))
}

func (h UserHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.Errors.Write(w, r, err, "User")
		return
	}
	writeJSON(w, http.StatusOK, "User retrieved", userView(*u))
}

func (h UserHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if !decode(w, r, &req) {
		return
	}
	in := service.UpdateUserInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
	}
	if req.Role != nil {
		role := domain.UserRole(*req.Role)
		in.Role = &role
	}
	u, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		h.Errors.Write(w, r, err, "User")
		return
	}
	writeJSON(w, http.StatusOK, "User updated", userView(*u))
}

func (h UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Errors.Write(w, r, err, "User")
		return
	}
	writeJSON(w, http.StatusOK, "User deleted", nil)
}
