package handler

import (
	"context"
	"net/http"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/pagination"
	"cinelight-api/internal/repository"
	"cinelight-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type EquipmentManager interface {
	Create(ctx context.Context, in service.EquipmentInput) (*domain.Equipment, error)
	Get(ctx context.Context, id int64) (*domain.Equipment, error)
	List(ctx context.Context, f repository.EquipmentFilter, p pagination.Params) (pagination.Page[domain.Equipment], error)
	ListByCategory(ctx context.Context, categoryID int64, f repository.EquipmentFilter, p pagination.Params) (pagination.Page[domain.Equipment], error)
	Update(ctx context.Context, id int64, in service.EquipmentInput) (*domain.Equipment, error)
	Delete(ctx context.Context, id int64) error
}

type EquipmentHandler struct {
	Service EquipmentManager
	Errors  Errors
}

func (h EquipmentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/equipment", h.list)
	r.Get("/equipment/category/{categoryId}", h.listByCategory)
	r.Get("/equipment/{id}", h.get)
}

func (h EquipmentHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/equipment", h.create)
	r.Put("/equipment/{id}", h.update)
	r.Delete("/equipment/{id}", h.delete)
}

type equipmentRequest struct {
	Name             *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description      *string          `json:"description"`
	DailyRentalPrice *decimal.Decimal `json:"dailyRentalPrice"`
	Quantity         *int             `json:"quantity" validate:"omitempty,min=0"`
	CategoryID       *int64           `json:"categoryId" validate:"omitempty,min=1"`
	IsActive         *bool            `json:"isActive"`
}

func (req equipmentRequest) input() service.EquipmentInput {
	return service.EquipmentInput{
		Name:             req.Name,
		Description:      req.Description,
		DailyRentalPrice: req.DailyRentalPrice,
		Quantity:         req.Quantity,
		CategoryID:       req.CategoryID,
		IsActive:         req.IsActive,
	}
}

func equipmentFilter(w http.ResponseWriter, r *http.Request) (repository.EquipmentFilter, bool) {
	var f repository.EquipmentFilter
	categoryID, err := parseIDQuery(r, "categoryId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid categoryId")
		return f, false
	}
	lo, hi, ok := priceRange(w, r)
	if !ok {
		return f, false
	}
	active, ok := activeFilter(w, r)
	if !ok {
		return f, false
	}
	return repository.EquipmentFilter{CategoryID: categoryID, MinPrice: lo, MaxPrice: hi, IsActive: active}, true
}

func (h EquipmentHandler) list(w http.ResponseWriter, r *http.Request) {
	f, ok := equipmentFilter(w, r)
	if !ok {
		return
	}
	page, err := h.Service.List(r.Context(), f, pagination.FromQuery(r.URL.Query()))
	if err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writePage(w, "Equipment retrieved", mapSlice(page.Items, equipmentView), page.Meta)
}

func (h EquipmentHandler) listByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "categoryId")
	if !ok {
		return
	}
	f, ok := equipmentFilter(w, r)
	if !ok {
		return
	}
	page, err := h.Service.ListByCategory(r.Context(), categoryID, f, pagination.FromQuery(r.URL.Query()))
	if err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writePage(w, "Equipment retrieved", mapSlice(page.Items, equipmentView), page.Meta)
}

func (h EquipmentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req equipmentRequest
	if !decode(w, r, &req) {
		return
	}
	e, err := h.Service.Create(r.Context(), req.input())
	if err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, "Equipment created", equipmentView(*e))
}

func (h EquipmentHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	e, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.Errors.Write(w, r, err, "Equipment")
		return
	}
	writeJSON(w, http.StatusOK, "Equipment retrieved", equipmentView(*e))
}

func (h EquipmentHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req equipmentRequest
	if !decode(w, r, &req) {
		return
	}
	e, err := h.Service.Update(r.Context(), id, req.input())
	if err != nil {
		h.Errors.Write(w, r, err, "Equipment")
		return
	}
	writeJSON(w, http.StatusOK, "Equipment updated", equipmentView(*e))
}

func (h EquipmentHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Errors.Write(w, r, err, "Equipment")
		return
	}
	writeJSON(w, http.StatusOK, "Equipment deleted", nil)
}
