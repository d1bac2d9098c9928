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

type BundleManager interface {
	Create(ctx context.Context, in service.BundleInput) (*domain.EquipmentBundle, error)
	Get(ctx context.Context, id int64) (*domain.EquipmentBundle, error)
	List(ctx context.Context, f repository.BundleFilter, p pagination.Params) (pagination.Page[domain.EquipmentBundle], error)
	Update(ctx context.Context, id int64, in service.BundleInput) (*domain.EquipmentBundle, error)
	Delete(ctx context.Context, id int64) error
}

type BundleHandler struct {
	Service BundleManager
	Errors  Errors
}

func (h BundleHandler) RegisterRoutes(r chi.Router) {
	r.Get("/bundles", h.list)
	r.Get("/bundles/{id}", h.get)
}

func (h BundleHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/bundles", h.create)
	r.Put("/bundles/{id}", h.update)
	r.Delete("/bundles/{id}", h.delete)
}

type bundleItemRequest struct {
	EquipmentID int64 `json:"equipmentId" validate:"required,min=1"`
	Quantity    int   `json:"quantity" validate:"omitempty,min=1"`
}

type bundleRequest struct {
	Name             *string              `json:"name" validate:"omitempty,min=1,max=255"`
	Description      *string              `json:"description"`
	DailyRentalPrice *decimal.Decimal     `json:"dailyRentalPrice"`
	Discount         *decimal.Decimal     `json:"discount"`
	IsActive         *bool                `json:"isActive"`
	Items            *[]bundleItemRequest `json:"items" validate:"omitempty,dive"`
}

func (req bundleRequest) input() service.BundleInput {
	in := service.BundleInput{
		Name:             req.Name,
		Description:      req.Description,
		DailyRentalPrice: req.DailyRentalPrice,
		Discount:         req.Discount,
		IsActive:         req.IsActive,
	}
	if req.Items != nil {
		items := make([]service.BundleItemInput, 0, len(*req.Items))
		for _, it := range *req.Items {
			items = append(items, service.BundleItemInput{EquipmentID: it.EquipmentID, Quantity: it.Quantity})
		}
		in.Items = &items
	}
	return in
}

func (h BundleHandler) list(w http.ResponseWriter, r *http.Request) {
	lo, hi, ok := priceRange(w, r)
	if !ok {
		return
	}
	active, ok := activeFilter(w, r)
	if !ok {
		return
	}
	page, err := h.Service.List(r.Context(), repository.BundleFilter{MinPrice: lo, MaxPrice: hi, IsActive: active}, pagination.FromQuery(r.URL.Query()))
	if err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writePage(w, "Bundles retrieved", mapSlice(page.Items, bundleView), page.Meta)
}

func (h BundleHandler) create(w http.ResponseWriter, r *http.Request) {
	var req bundleRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := h.Service.Create(r.Context(), req.input())
	if err != nil {
		h.Errors.Write(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, "Bundle created", bundleView(*b))
}

func (h BundleHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.Errors.Write(w, r, err, "Bundle")
		return
	}
	writeJSON(w, http.StatusOK, "Bundle retrieved", bundleView(*b))
}

func (h BundleHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req bundleRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := h.Service.Update(r.Context(), id, req.input())
	if err != nil {
		h.Errors.Write(w, r, err, "Bundle")
		return
	}
	writeJSON(w, http.StatusOK, "Bundle updated", bundleView(*b))
}

func (h BundleHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Errors.Write(w, r, err, "Bundle")
		return
	}
	writeJSON(w, http.StatusOK, "Bundle deleted", nil)
}
