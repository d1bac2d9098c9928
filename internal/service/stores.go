package service

import (
	"context"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/pagination"
	"cinelight-api/internal/repository"
)

// The stores below are implemented by the repository package.

type UserStore interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, f repository.UserFilter, p pagination.Params) ([]domain.User, int, error)
	Update(ctx context.Context, u *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryStore interface {
	Create(ctx context.Context, c *domain.EquipmentCategory) (*domain.EquipmentCategory, error)
	Get(ctx context.Context, id int64) (*domain.EquipmentCategory, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f repository.CategoryFilter, p pagination.Params) ([]domain.EquipmentCategory, int, error)
	Update(ctx context.Context, c *domain.EquipmentCategory) (*domain.EquipmentCategory, error)
	Delete(ctx context.Context, id int64) error
}

type EquipmentStore interface {
	Create(ctx context.Context, e *domain.Equipment) (*domain.Equipment, error)
	Get(ctx context.Context, id int64) (*domain.Equipment, error)
	List(ctx context.Context, f repository.EquipmentFilter, p pagination.Params) ([]domain.Equipment, int, error)
	Update(ctx context.Context, e *domain.Equipment) (*domain.Equipment, error)
	Delete(ctx context.Context, id int64) error
}

type BundleStore interface {
	Create(ctx context.Context, b *domain.EquipmentBundle) (*domain.EquipmentBundle, error)
	Get(ctx context.Context, id int64) (*domain.EquipmentBundle, error)
	List(ctx context.Context, f repository.BundleFilter, p pagination.Params) ([]domain.EquipmentBundle, int, error)
	Update(ctx context.Context, b *domain.EquipmentBundle, items []domain.EquipmentBundleItem) (*domain.EquipmentBundle, error)
	Delete(ctx context.Context, id int64) error
}

type QuotationStore interface {
	List(ctx context.Context, f repository.QuotationFilter, p pagination.Params) ([]domain.Quotation, int, error)
	Get(ctx context.Context, id int64) (*domain.Quotation, error)
	Sections(ctx context.Context, quotationID int64) ([]domain.QuotationSection, error)
	Items(ctx context.Context, quotationID int64) ([]domain.QuotationItem, error)
	Delete(ctx context.Context, id int64) error
	InTx(ctx context.Context, fn func(repository.QuotationTx) error) error
}
