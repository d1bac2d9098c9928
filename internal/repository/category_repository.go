package repository

import (
	"context"

	"cinelight-api/internal/db"
	"cinelight-api/internal/domain"
	"cinelight-api/internal/pagination"
)

type CategoryRepository struct {
	DB *db.Postgres
}

type CategoryFilter struct {
	IsActive *bool
}

const categoryColumns = `id, name, COALESCE(description, ''), is_active, created_at, updated_at`

var categorySort = sortColumns{
	columns: map[string]string{
		"name":      "name",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	},
	defaultKey:   "name",
	defaultOrder: pagination.OrderAsc,
}

func (r CategoryRepository) Create(ctx context.Context, c *domain.EquipmentCategory) (*domain.EquipmentCategory, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO equipment_categories (name, description, is_active, created_at, updated_at)
		VALUES ($1,$2,$3, now(), now())
		RETURNING `+categoryColumns,
		c.Name, c.Description, c.IsActive)
	return scanCategory(row)
}

// Get returns the category with its equipment.
func (r CategoryRepository) Get(ctx context.Context, id int64) (*domain.EquipmentCategory, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM equipment_categories WHERE id=$1`, id)
	c, err := notFound(scanCategory(row))
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Pool.Query(ctx, `SELECT `+equipmentColumns+equipmentFrom+` WHERE e.category_id=$1 ORDER BY e.name ASC, e.id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	c.Equipment = []domain.Equipment{}
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		c.Equipment = append(c.Equipment, *e)
	}
	return c, rows.Err()
}

func (r CategoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.DB.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM equipment_categories WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}

func (r CategoryRepository) List(ctx context.Context, f CategoryFilter, p pagination.Params) ([]domain.EquipmentCategory, int, error) {
	var b whereBuilder
	b.search(p.Search, "name", "description")
	if f.IsActive != nil {
		b.add("is_active = ?", *f.IsActive)
	}

	var total int
	if err := r.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM equipment_categories`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := b.page(p)
	rows, err := r.DB.Pool.Query(ctx, `SELECT `+categoryColumns+` FROM equipment_categories`+b.where()+categorySort.orderBy(p, "id")+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []domain.EquipmentCategory{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *c)
	}
	return items, total, rows.Err()
}

func (r CategoryRepository) Update(ctx context.Context, c *domain.EquipmentCategory) (*domain.EquipmentCategory, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE equipment_categories
		SET name=$2, description=$3, is_active=$4, updated_at=now()
		WHERE id=$1
		RETURNING `+categoryColumns,
		c.ID, c.Name, c.Description, c.IsActive)
	return notFound(scanCategory(row))
}

// Delete fails with a foreign key violation while equipment references the category.
func (r CategoryRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.DB.Pool, `DELETE FROM equipment_categories WHERE id=$1`, id)
}

func scanCategory(row interface {
	Scan(dest ...any) error
}) (*domain.EquipmentCategory, error) {
	var c domain.EquipmentCategory
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
