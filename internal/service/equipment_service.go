package service

import (
	"context"
	"log/slog"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/pagination"
	"cinelight-api/internal/repository"
	"github.com/shopspring/decimal"
)

type EquipmentService struct {
	Equipment  EquipmentStore
	Categories CategoryStore
	Logger     *slog.Logger
}

type EquipmentInput struct {
	Name             *string
	Description      *string
	DailyRentalPrice *decimal.Decimal
	Quantity         *int
	CategoryID       *int64
	IsActive         *bool
}

func (s EquipmentService) Create(ctx context.Context, in EquipmentInput) (*domain.Equipment, error) {
	e := &domain.Equipment{IsActive: true}
	applyEquipment(e, in)
	if err := s.check(ctx, e); err != nil {
		return nil, err
	}
	created, err := s.Equipment.Create(ctx, e)
	if err != nil {
		return nil, mapRepoErr("Equipment", err)
	}
	s.Logger.Debug("equipment created", "id", created.ID)
	return created, nil
}

func (s EquipmentService) Get(ctx context.Context, id int64) (*domain.Equipment, error) {
	e, err := s.Equipment.Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr("Equipment", err)
	}
	return e, nil
}

func (s EquipmentService) List(ctx context.Context, f repository.EquipmentFilter, p pagination.Params) (pagination.Page[domain.Equipment], error) {
	p = p.Normalize()
	items, total, err := s.Equipment.List(ctx, f, p)
	if err != nil {
		return pagination.Page[domain.Equipment]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

func (s EquipmentService) ListByCategory(ctx context.Context, categoryID int64, f repository.EquipmentFilter, p pagination.Params) (pagination.Page[domain.Equipment], error) {
	f.CategoryID = &categoryID
	return s.List(ctx, f, p)
}

func (s EquipmentService) Update(ctx context.Context, id int64, in EquipmentInput) (*domain.Equipment, error) {
	e, err := s.Equipment.Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr("Equipment", err)
	}
	categoryChanged := in.CategoryID != nil && *in.CategoryID != e.CategoryID
	applyEquipment(e, in)
	if err := validateEquipment(e); err != nil {
		return nil, err
	}
	if categoryChanged {
		if err := s.requireCategory(ctx, e.CategoryID); err != nil {
			return nil, err
		}
	}
	updated, err := s.Equipment.Update(ctx, e)
	if err != nil {
		return nil, mapRepoErr("Equipment", err)
	}
	return updated, nil
}

// Delete is refused while a bundle item references the equipment.
func (s EquipmentService) Delete(ctx context.Context, id int64) error {
	if err := s.Equipment.Delete(ctx, id); err != nil {
		return mapRepoErr("Equipment", err)
	}
	s.Logger.Info("equipment deleted", "id", id)
	return nil
}

func (s EquipmentService) check(ctx context.Context, e *domain.Equipment) error {
	if err := validateEquipment(e); err != nil {
		return err
	}
	return s.requireCategory(ctx, e.CategoryID)
}

func (s EquipmentService) requireCategory(ctx context.Context, id int64) error {
	ok, err := s.Categories.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("Category")
	}
	return nil
}

func validateEquipment(e *domain.Equipment) error {
	var fields []FieldError
	if e.Name == "" {
		fields = append(fields, FieldError{Field: "name", Message: "name is required"})
	}
	if e.DailyRentalPrice.IsNegative() {
		fields = append(fields, FieldError{Field: "dailyRentalPrice", Message: "must not be negative"})
	}
	if e.Quantity < 0 {
		fields = append(fields, FieldError{Field: "quantity", Message: "must not be negative"})
	}
	if e.CategoryID <= 0 {
		fields = append(fields, FieldError{Field: "categoryId", Message: "categoryId is required"})
	}
	if len(fields) > 0 {
		return ValidationError{Fields: fields}
	}
	return nil
}

func applyEquipment(e *domain.Equipment, in EquipmentInput) {
	if in.Name != nil {
		e.Name = *in.Name
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.DailyRentalPrice != nil {
		e.DailyRentalPrice = *in.DailyRentalPrice
	}
	if in.Quantity != nil {
		e.Quantity = *in.Quantity
	}
	if in.CategoryID != nil {
		e.CategoryID = *in.CategoryID
	}
	if in.IsActive != nil {
		e.IsActive = *in.IsActive
	}
}
