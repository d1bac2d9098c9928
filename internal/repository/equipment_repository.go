package repository

import (
	"context"

	"cinelight-api/internal/db"
	"cinelight-api/internal/domain"
	"cinelight-api/internal/pagination"
	"github.com/shopspring/decimal"
)

type EquipmentRepository struct {
	DB *db.Postgres
}

type EquipmentFilter struct {
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	IsActive   *bool
}

const (
	equipmentColumns = `e.id, e.name, COALESCE(e.description, ''), e.daily_rental_price, e.quantity, e.category_id, COALESCE(c.name, ''), e.is_active, e.created_at, e.updated_at`
	equipmentFrom    = ` FROM equipment e LEFT JOIN equipment_categories c ON c.id = e.category_id`
)

var equipmentSort = sortColumns{
	columns: map[string]string{
		"name":             "e.name",
		"dailyRentalPrice": "e.daily_rental_price",
		"quantity":         "e.quantity",
		"createdAt":        "e.created_at",
		"updatedAt":        "e.updated_at",
	},
	defaultKey:   "name",
	defaultOrder: pagination.OrderAsc,
}

func (r EquipmentRepository) Create(ctx context.Context, e *domain.Equipment) (*domain.Equipment, error) {
	var id int64
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO equipment (name, description, daily_rental_price, quantity, category_id, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6, now(), now())
		RETURNING id`,
		e.Name, e.Description, e.DailyRentalPrice, e.Quantity, e.CategoryID, e.IsActive).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r EquipmentRepository) Get(ctx context.Context, id int64) (*domain.Equipment, error) {
	return getEquipment(ctx, r.DB.Pool, id)
}

func getEquipment(ctx context.Context, q db.Querier, id int64) (*domain.Equipment, error) {
	row := q.QueryRow(ctx, `SELECT `+equipmentColumns+equipmentFrom+` WHERE e.id=$1`, id)
	return notFound(scanEquipment(row))
}

func (r EquipmentRepository) List(ctx context.Context, f EquipmentFilter, p pagination.Params) ([]domain.Equipment, int, error) {
	var b whereBuilder
	b.search(p.Search, "e.name", "e.description", "c.name")
	if f.CategoryID != nil {
		b.add("e.category_id = ?", *f.CategoryID)
	}
	if f.MinPrice != nil {
		b.add("e.daily_rental_price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		b.add("e.daily_rental_price <= ?", *f.MaxPrice)
	}
	if f.IsActive != nil {
		b.add("e.is_active = ?", *f.IsActive)
	}

	var total int
	if err := r.DB.Pool.QueryRow(ctx, `SELECT COUNT(*)`+equipmentFrom+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := b.page(p)
	rows, err := r.DB.Pool.Query(ctx, `SELECT `+equipmentColumns+equipmentFrom+b.where()+equipmentSort.orderBy(p, "e.id")+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []domain.Equipment{}
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *e)
	}
	return items, total, rows.Err()
}

func (r EquipmentRepository) Update(ctx context.Context, e *domain.Equipment) (*domain.Equipment, error) {
	err := execOne(ctx, r.DB.Pool, `
		UPDATE equipment
		SET name=$2, description=$3, daily_rental_price=$4, quantity=$5, category_id=$6, is_active=$7, updated_at=now()
		WHERE id=$1`,
		e.ID, e.Name, e.Description, e.DailyRentalPrice, e.Quantity, e.CategoryID, e.IsActive)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, e.ID)
}

// Delete fails with a foreign key violation while a bundle item references the equipment.
func (r EquipmentRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.DB.Pool, `DELETE FROM equipment WHERE id=$1`, id)
}

func scanEquipment(row interface {
	Scan(dest ...any) error
}) (*domain.Equipment, error) {
	var e domain.Equipment
	if err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.DailyRentalPrice,
		&e.Quantity,
		&e.CategoryID,
		&e.CategoryName,
		&e.IsActive,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}
