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

type CategoryManager interface {
	Create(ctx context.Context, in service.CategoryInput) (*domain.EquipmentCategory, error)
	Get(ctx context.Context, id int64) (*domain.EquipmentCategory, error)
	List(ctx context.Context, f repository.CategoryFilter, p pagination.Params) (pagination.Page[domain.EquipmentCategory], error)
	Update(ctx context.Context, id int64, in service.CategoryInput) (*domain.EquipmentCategory, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryHandler struct {
	Service CategoryManager
	Errors  Errors
}

// RegisterRoutes mounts the read routes available to every authenticated user.
func (h CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.list)
	r.Get("/categories/{id}", h.get)
}

func (h CategoryHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/categories", h.create)
	r.Put("/categories/{id}", h.update)
	r.Delete("/categories/{id}", h.delete)
}

type categoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

func (req categoryRequest) input() service.CategoryInput {
	return service.CategoryInput{Name: req.Name, Description: req.Description, IsActive: req.IsActive}
}

func (h CategoryHandler) list(w http.ResponseWriter, r *http.Request) {
	active, ok := activeFilter(w, r)
	if !ok {
		return
	}
	page, err := h.Service.List(r.Context(), repository.CategoryFilter{IsActive: active}, pagination.FromQuery(r.URL.Query()))
	if err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writePage(w, "Categories retrieved", mapSlice(page.Items, categoryView), page.Meta)
}

func (h CategoryHandler) create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.Service.Create(r.Context(), req.input())
	if err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, "Category created", categoryView(*c))
}

func (h CategoryHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.Errors.Write(w, r, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, "Category retrieved", categoryView(*c))
}

func (h CategoryHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.Service.Update(r.Context(), id, req.input())
	if err != nil {
		h.Errors.Write(w, r, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, "Category updated", categoryView(*c))
}

func (h CategoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Errors.Write(w, r, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, "Category deleted", nil)
}
