package service

import (
	"context"
	"fmt"
	"log/slog"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/pagination"
	"cinelight-api/internal/repository"
	"github.com/shopspring/decimal"
)

var maxDiscount = decimal.NewFromInt(100)

type BundleService struct {
	Bundles   BundleStore
	Equipment EquipmentStore
	Logger    *slog.Logger
}

type BundleItemInput struct {
	EquipmentID int64
	Quantity    int
}

type BundleInput struct {
	Name             *string
	Description      *string
	DailyRentalPrice *decimal.Decimal
	Discount         *decimal.Decimal
	IsActive         *bool
	// Items replaces the bundle's items when non-nil.
	Items *[]BundleItemInput
}

func (s BundleService) Create(ctx context.Context, in BundleInput) (*domain.EquipmentBundle, error) {
	b := &domain.EquipmentBundle{IsActive: true}
	applyBundle(b, in)
	if err := validateBundle(b); err != nil {
		return nil, err
	}
	if in.Items != nil {
		items, err := s.resolveItems(ctx, *in.Items)
		if err != nil {
			return nil, err
		}
		b.Items = items
	}
	created, err := s.Bundles.Create(ctx, b)
	if err != nil {
		return nil, mapRepoErr("Bundle", err)
	}
	s.Logger.Debug("bundle created", "id", created.ID, "items", len(created.Items))
	return created, nil
}

// Get returns the bundle with its items, their equipment and category.
func (s BundleService) Get(ctx context.Context, id int64) (*domain.EquipmentBundle, error) {
	b, err := s.Bundles.Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr("Bundle", err)
	}
	return b, nil
}

func (s BundleService) List(ctx context.Context, f repository.BundleFilter, p pagination.Params) (pagination.Page[domain.EquipmentBundle], error) {
	p = p.Normalize()
	items, total, err := s.Bundles.List(ctx, f, p)
	if err != nil {
		return pagination.Page[domain.EquipmentBundle]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

func (s BundleService) Update(ctx context.Context, id int64, in BundleInput) (*domain.EquipmentBundle, error) {
	b, err := s.Bundles.Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr("Bundle", err)
	}
	applyBundle(b, in)
	if err := validateBundle(b); err != nil {
		return nil, err
	}
	var items []domain.EquipmentBundleItem
	if in.Items != nil {
		items, err = s.resolveItems(ctx, *in.Items)
		if err != nil {
			return nil, err
		}
	}
	updated, err := s.Bundles.Update(ctx, b, items)
	if err != nil {
		return nil, mapRepoErr("Bundle", err)
	}
	return updated, nil
}

// Delete removes the bundle and its items.
func (s BundleService) Delete(ctx context.Context, id int64) error {
	if err := s.Bundles.Delete(ctx, id); err != nil {
		return mapRepoErr("Bundle", err)
	}
	s.Logger.Info("bundle deleted", "id", id)
	return nil
}

// resolveItems checks each referenced equipment exists. The returned slice is
// never nil so an empty list clears the bundle on update.
func (s BundleService) resolveItems(ctx context.Context, in []BundleItemInput) ([]domain.EquipmentBundleItem, error) {
	out := make([]domain.EquipmentBundleItem, 0, len(in))
	for i, it := range in {
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 {
			return nil, invalid(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
		if _, err := s.Equipment.Get(ctx, it.EquipmentID); err != nil {
			return nil, mapRepoErr("Equipment", err)
		}
		out = append(out, domain.EquipmentBundleItem{EquipmentID: it.EquipmentID, Quantity: qty})
	}
	return out, nil
}

func validateBundle(b *domain.EquipmentBundle) error {
	var fields []FieldError
	if b.Name == "" {
		fields = append(fields, FieldError{Field: "name", Message: "name is required"})
	}
	if b.DailyRentalPrice.IsNegative() {
		fields = append(fields, FieldError{Field: "dailyRentalPrice", Message: "must not be negative"})
	}
	if b.Discount.IsNegative() || b.Discount.GreaterThan(maxDiscount) {
		fields = append(fields, FieldError{Field: "discount", Message: "must be between 0 and 100"})
	}
	if len(fields) > 0 {
		return ValidationError{Fields: fields}
	}
	return nil
}

func applyBundle(b *domain.EquipmentBundle, in BundleInput) {
	if in.Name != nil {
		b.Name = *in.Name
	}
	if in.Description != nil {
		b.Description = *in.Description
	}
	if in.DailyRentalPrice != nil {
		b.DailyRentalPrice = *in.DailyRentalPrice
	}
	if in.Discount != nil {
		b.Discount = *in.Discount
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
}
