package repository

import (
	"context"

	"cinelight-api/internal/db"
	"cinelight-api/internal/domain"
	"cinelight-api/internal/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type BundleRepository struct {
	DB *db.Postgres
}

type BundleFilter struct {
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	IsActive *bool
}

const bundleColumns = `id, name, COALESCE(description, ''), daily_rental_price, discount, is_active, created_at, updated_at`

var bundleSort = sortColumns{
	columns: map[string]string{
		"name":             "name",
		"dailyRentalPrice": "daily_rental_price",
		"discount":         "discount",
		"createdAt":        "created_at",
		"updatedAt":        "updated_at",
	},
	defaultKey:   "name",
	defaultOrder: pagination.OrderAsc,
}

// Create inserts the bundle and its items in one transaction.
func (r BundleRepository) Create(ctx context.Context, b *domain.EquipmentBundle) (*domain.EquipmentBundle, error) {
	var id int64
	err := r.DB.InTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO equipment_bundles (name, description, daily_rental_price, discount, is_active, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5, now(), now())
			RETURNING id`,
			b.Name, b.Description, b.DailyRentalPrice, b.Discount, b.IsActive).Scan(&id); err != nil {
			return err
		}
		return insertBundleItems(ctx, tx, id, b.Items)
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Get returns the bundle with its items, their equipment and category.
func (r BundleRepository) Get(ctx context.Context, id int64) (*domain.EquipmentBundle, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+bundleColumns+` FROM equipment_bundles WHERE id=$1`, id)
	b, err := notFound(scanBundle(row))
	if err != nil {
		return nil, err
	}
	items, err := r.itemsFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	b.Items = items[id]
	if b.Items == nil {
		b.Items = []domain.EquipmentBundleItem{}
	}
	return b, nil
}

func (r BundleRepository) List(ctx context.Context, f BundleFilter, p pagination.Params) ([]domain.EquipmentBundle, int, error) {
	var w whereBuilder
	w.search(p.Search, "name", "description")
	if f.MinPrice != nil {
		w.add("daily_rental_price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		w.add("daily_rental_price <= ?", *f.MaxPrice)
	}
	if f.IsActive != nil {
		w.add("is_active = ?", *f.IsActive)
	}

	var total int
	if err := r.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM equipment_bundles`+w.where(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := w.page(p)
	rows, err := r.DB.Pool.Query(ctx, `SELECT `+bundleColumns+` FROM equipment_bundles`+w.where()+bundleSort.orderBy(p, "id")+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	bundles := []domain.EquipmentBundle{}
	ids := []int64{}
	for rows.Next() {
		b, err := scanBundle(rows)
		if err != nil {
			return nil, 0, err
		}
		bundles = append(bundles, *b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	if len(ids) == 0 {
		return bundles, total, nil
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range bundles {
		bundles[i].Items = items[bundles[i].ID]
		if bundles[i].Items == nil {
			bundles[i].Items = []domain.EquipmentBundleItem{}
		}
	}
	return bundles, total, nil
}

// Update saves the bundle header. When items is non-nil the bundle's items are
// replaced in the same transaction.
func (r BundleRepository) Update(ctx context.Context, b *domain.EquipmentBundle, items []domain.EquipmentBundleItem) (*domain.EquipmentBundle, error) {
	err := r.DB.InTx(ctx, func(tx pgx.Tx) error {
		if err := execOne(ctx, tx, `
			UPDATE equipment_bundles
			SET name=$2, description=$3, daily_rental_price=$4, discount=$5, is_active=$6, updated_at=now()
			WHERE id=$1`,
			b.ID, b.Name, b.Description, b.DailyRentalPrice, b.Discount, b.IsActive); err != nil {
			return err
		}
		if items == nil {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM equipment_bundle_items WHERE bundle_id=$1`, b.ID); err != nil {
			return err
		}
		return insertBundleItems(ctx, tx, b.ID, items)
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, b.ID)
}

// Delete removes the bundle; its items go with it.
func (r BundleRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.DB.Pool, `DELETE FROM equipment_bundles WHERE id=$1`, id)
}

func insertBundleItems(ctx context.Context, tx pgx.Tx, bundleID int64, items []domain.EquipmentBundleItem) error {
	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO equipment_bundle_items (bundle_id, equipment_id, quantity, created_at, updated_at)
			VALUES ($1,$2,$3, now(), now())`,
			bundleID, it.EquipmentID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (r BundleRepository) itemsFor(ctx context.Context, bundleIDs []int64) (map[int64][]domain.EquipmentBundleItem, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT bi.id, bi.bundle_id, bi.equipment_id, bi.quantity, bi.created_at, bi.updated_at, `+equipmentColumns+`
		FROM equipment_bundle_items bi
		JOIN equipment e ON e.id = bi.equipment_id
		LEFT JOIN equipment_categories c ON c.id = e.category_id
		WHERE bi.bundle_id = ANY($1)
		ORDER BY bi.id ASC`, bundleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]domain.EquipmentBundleItem, len(bundleIDs))
	for rows.Next() {
		var (
			it domain.EquipmentBundleItem
			e  domain.Equipment
		)
		if err := rows.Scan(
			&it.ID, &it.BundleID, &it.EquipmentID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt,
			&e.ID, &e.Name, &e.Description, &e.DailyRentalPrice, &e.Quantity, &e.CategoryID, &e.CategoryName, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		it.Equipment = &e
		out[it.BundleID] = append(out[it.BundleID], it)
	}
	return out, rows.Err()
}

func scanBundle(row interface {
	Scan(dest ...any) error
}) (*domain.EquipmentBundle, error) {
	var b domain.EquipmentBundle
	if err := row.Scan(&b.ID, &b.Name, &b.Description, &b.DailyRentalPrice, &b.Discount, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}
