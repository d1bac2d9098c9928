package service

import (
	"context"
	"log/slog"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/pagination"
	"cinelight-api/internal/repository"
)

type CategoryService struct {
	Categories CategoryStore
	Logger     *slog.Logger
}

type CategoryInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

func (s CategoryService) Create(ctx context.Context, in CategoryInput) (*domain.EquipmentCategory, error) {
	c := &domain.EquipmentCategory{IsActive: true}
	applyCategory(c, in)
	if c.Name == "" {
		return nil, invalid("name", "name is required")
	}
	created, err := s.Categories.Create(ctx, c)
	if err != nil {
		return nil, mapRepoErr("Category", err)
	}
	return created, nil
}

// Get returns the category with its equipment.
func (s CategoryService) Get(ctx context.Context, id int64) (*domain.EquipmentCategory, error) {
	c, err := s.Categories.Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr("Category", err)
	}
	return c, nil
}

func (s CategoryService) List(ctx context.Context, f repository.CategoryFilter, p pagination.Params) (pagination.Page[domain.EquipmentCategory], error) {
	p = p.Normalize()
	items, total, err := s.Categories.List(ctx, f, p)
	if err != nil {
		return pagination.Page[domain.EquipmentCategory]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

func (s CategoryService) Update(ctx context.Context, id int64, in CategoryInput) (*domain.EquipmentCategory, error) {
	c, err := s.Categories.Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr("Category", err)
	}
	applyCategory(c, in)
	if c.Name == "" {
		return nil, invalid("name", "name is required")
	}
	updated, err := s.Categories.Update(ctx, c)
	if err != nil {
		return nil, mapRepoErr("Category", err)
	}
	return updated, nil
}

// Delete is refused while equipment still belongs to the category.
func (s CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.Categories.Delete(ctx, id); err != nil {
		return mapRepoErr("Category", err)
	}
	s.Logger.Info("category deleted", "id", id)
	return nil
}

func applyCategory(c *domain.EquipmentCategory, in CategoryInput) {
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
}
