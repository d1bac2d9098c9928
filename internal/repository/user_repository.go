package repository

import (
	"context"
	"errors"

	"cinelight-api/internal/db"
	"cinelight-api/internal/domain"
	"cinelight-api/internal/pagination"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	DB *db.Postgres
}

type UserFilter struct {
	IsActive *bool
	Role     string
}

const userColumns = `id, username, password, COALESCE(email, ''), COALESCE(first_name, ''), COALESCE(last_name, ''), is_active, role, created_at, updated_at`

var userSort = sortColumns{
	columns: map[string]string{
		"username":  "username",
		"email":     "email",
		"firstName": "first_name",
		"lastName":  "last_name",
		"role":      "role",
		"createdAt": "created_at",
	},
	defaultKey:   "username",
	defaultOrder: pagination.OrderAsc,
}

func (r UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO users (username, password, email, first_name, last_name, is_active, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, now(), now())
		RETURNING `+userColumns,
		u.Username, u.PasswordHash, u.Email, u.FirstName, u.LastName, u.IsActive, string(u.Role))
	return scanUser(row)
}

func (r UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
	return notFound(scanUser(row))
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	return notFound(scanUser(row))
}

func (r UserRepository) List(ctx context.Context, f UserFilter, p pagination.Params) ([]domain.User, int, error) {
	var b whereBuilder
	b.search(p.Search, "username", "email", "first_name", "last_name")
	if f.IsActive != nil {
		b.add("is_active = ?", *f.IsActive)
	}
	if f.Role != "" {
		b.add("role = ?", f.Role)
	}

	var total int
	if err := r.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := b.page(p)
	rows, err := r.DB.Pool.Query(ctx, `SELECT `+userColumns+` FROM users`+b.where()+userSort.orderBy(p, "id")+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *u)
	}
	return items, total, rows.Err()
}

func (r UserRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE users
		SET username=$2, password=$3, email=$4, first_name=$5, last_name=$6, is_active=$7, role=$8, updated_at=now()
		WHERE id=$1
		RETURNING `+userColumns,
		u.ID, u.Username, u.PasswordHash, u.Email, u.FirstName, u.LastName, u.IsActive, string(u.Role))
	return notFound(scanUser(row))
}

func (r UserRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.DB.Pool, `DELETE FROM users WHERE id=$1`, id)
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.IsActive,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = domain.UserRole(role)
	return &u, nil
}

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// IsDuplicate detects unique constraint violation.
func IsDuplicate(err error) bool {
	return db.IsUniqueViolation(err)
}

// IsInUse detects a row still referenced through a restricting foreign key.
func IsInUse(err error) bool {
	return db.IsForeignKeyViolation(err)
}

func notFound[T any](v *T, err error) (*T, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func execOne(ctx context.Context, q db.Querier, sql string, args ...any) error {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
