package repository

import (
	"context"
	"time"

	"cinelight-api/internal/db"
	"cinelight-api/internal/domain"
	"cinelight-api/internal/pagination"
	"github.com/jackc/pgx/v5"
)

type QuotationRepository struct {
	DB *db.Postgres
}

type QuotationFilter struct {
	Status   string
	FromDate *time.Time
	ToDate   *time.Time
}

// QuotationTx is the set of quotation writes that run inside one transaction.
// Lock must be called before touching a quotation's children so concurrent
// recomputes of the same quotation serialize on its row.
type QuotationTx interface {
	LockNumberPrefix(ctx context.Context, prefix string) error
	NumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
	Insert(ctx context.Context, q *domain.Quotation) (*domain.Quotation, error)
	Lock(ctx context.Context, id int64) (*domain.Quotation, error)
	Update(ctx context.Context, q *domain.Quotation) error

	Sections(ctx context.Context, quotationID int64) ([]domain.QuotationSection, error)
	InsertSection(ctx context.Context, s *domain.QuotationSection) (*domain.QuotationSection, error)
	UpdateSection(ctx context.Context, s *domain.QuotationSection) error
	DeleteSection(ctx context.Context, quotationID, id int64) error

	Items(ctx context.Context, quotationID int64) ([]domain.QuotationItem, error)
	InsertItem(ctx context.Context, it *domain.QuotationItem) (*domain.QuotationItem, error)
	UpdateItem(ctx context.Context, it *domain.QuotationItem) error
	DeleteItem(ctx context.Context, quotationID, id int64) error

	Equipment(ctx context.Context, id int64) (*domain.Equipment, error)
}

const (
	quotationColumns = `id, quotation_number, client_name, COALESCE(client_email, ''), COALESCE(client_phone, ''), COALESCE(client_address, ''),
		COALESCE(project_name, ''), COALESCE(project_description, ''), issue_date, valid_until,
		subtotal, tax, discount, total, status::text, COALESCE(notes, ''), COALESCE(terms, ''), created_at, updated_at`
	sectionColumns = `id, quotation_id, name, date, COALESCE(description, ''), subtotal, is_active, created_at, updated_at`
	itemColumns    = `id, quotation_id, section_id, equipment_id, item_name, COALESCE(description, ''), quantity, unit,
		price_per_day, days, total, COALESCE(remarks, ''), type::text, is_active, created_at, updated_at`
)

var quotationSort = sortColumns{
	columns: map[string]string{
		"quotationNumber": "quotation_number",
		"clientName":      "client_name",
		"projectName":     "project_name",
		"issueDate":       "issue_date",
		"validUntil":      "valid_until",
		"total":           "total",
		"status":          "status",
		"createdAt":       "created_at",
		"updatedAt":       "updated_at",
	},
	defaultKey:   "createdAt",
	defaultOrder: pagination.OrderDesc,
}

func (r QuotationRepository) List(ctx context.Context, f QuotationFilter, p pagination.Params) ([]domain.Quotation, int, error) {
	var b whereBuilder
	b.search(p.Search, "quotation_number", "client_name", "project_name")
	if f.Status != "" {
		b.add("status::text = ?", f.Status)
	}
	if f.FromDate != nil {
		b.add("issue_date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		b.add("issue_date <= ?", *f.ToDate)
	}

	var total int
	if err := r.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM quotations`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := b.page(p)
	rows, err := r.DB.Pool.Query(ctx, `SELECT `+quotationColumns+` FROM quotations`+b.where()+quotationSort.orderBy(p, "id")+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []domain.Quotation{}
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *q)
	}
	return items, total, rows.Err()
}

// Get returns the quotation header without children.
func (r QuotationRepository) Get(ctx context.Context, id int64) (*domain.Quotation, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id=$1`, id)
	return notFound(scanQuotation(row))
}

func (r QuotationRepository) Sections(ctx context.Context, quotationID int64) ([]domain.QuotationSection, error) {
	return listSections(ctx, r.DB.Pool, quotationID)
}

func (r QuotationRepository) Items(ctx context.Context, quotationID int64) ([]domain.QuotationItem, error) {
	return listItems(ctx, r.DB.Pool, quotationID)
}

// Delete removes the quotation together with its sections and items.
func (r QuotationRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.DB.Pool, `DELETE FROM quotations WHERE id=$1`, id)
}

// InTx runs fn with a transactional view of the quotation tables.
func (r QuotationRepository) InTx(ctx context.Context, fn func(QuotationTx) error) error {
	return r.DB.InTx(ctx, func(tx pgx.Tx) error {
		return fn(quotationTx{tx: tx})
	})
}

type quotationTx struct {
	tx pgx.Tx
}

// LockNumberPrefix serializes number generation for one month prefix until the
// transaction ends.
func (t quotationTx) LockNumberPrefix(ctx context.Context, prefix string) error {
	_, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, prefix)
	return err
}

func (t quotationTx) NumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := t.tx.Query(ctx, `SELECT quotation_number FROM quotations WHERE quotation_number LIKE $1`, escapeLike(prefix)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (t quotationTx) Insert(ctx context.Context, q *domain.Quotation) (*domain.Quotation, error) {
	row := t.tx.QueryRow(ctx, `
		INSERT INTO quotations (quotation_number, client_name, client_email, client_phone, client_address,
			project_name, project_description, issue_date, valid_until, subtotal, tax, discount, total,
			status, notes, terms, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16, now(), now())
		RETURNING `+quotationColumns,
		q.QuotationNumber, q.ClientName, q.ClientEmail, q.ClientPhone, q.ClientAddress,
		q.ProjectName, q.ProjectDescription, q.IssueDate, q.ValidUntil, q.Subtotal, q.Tax, q.Discount, q.Total,
		string(q.Status), q.Notes, q.Terms)
	return scanQuotation(row)
}

func (t quotationTx) Lock(ctx context.Context, id int64) (*domain.Quotation, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id=$1 FOR UPDATE`, id)
	return notFound(scanQuotation(row))
}

func (t quotationTx) Update(ctx context.Context, q *domain.Quotation) error {
	return execOne(ctx, t.tx, `
		UPDATE quotations
		SET quotation_number=$2, client_name=$3, client_email=$4, client_phone=$5, client_address=$6,
			project_name=$7, project_description=$8, issue_date=$9, valid_until=$10,
			subtotal=$11, tax=$12, discount=$13, total=$14, status=$15, notes=$16, terms=$17, updated_at=now()
		WHERE id=$1`,
		q.ID, q.QuotationNumber, q.ClientName, q.ClientEmail, q.ClientPhone, q.ClientAddress,
		q.ProjectName, q.ProjectDescription, q.IssueDate, q.ValidUntil,
		q.Subtotal, q.Tax, q.Discount, q.Total, string(q.Status), q.Notes, q.Terms)
}

func (t quotationTx) Sections(ctx context.Context, quotationID int64) ([]domain.QuotationSection, error) {
	return listSections(ctx, t.tx, quotationID)
}

func (t quotationTx) InsertSection(ctx context.Context, s *domain.QuotationSection) (*domain.QuotationSection, error) {
	row := t.tx.QueryRow(ctx, `
		INSERT INTO quotation_sections (quotation_id, name, date, description, subtotal, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6, now(), now())
		RETURNING `+sectionColumns,
		s.QuotationID, s.Name, s.Date, s.Description, s.Subtotal, s.IsActive)
	return scanSection(row)
}

func (t quotationTx) UpdateSection(ctx context.Context, s *domain.QuotationSection) error {
	return execOne(ctx, t.tx, `
		UPDATE quotation_sections
		SET name=$3, date=$4, description=$5, subtotal=$6, is_active=$7, updated_at=now()
		WHERE id=$1 AND quotation_id=$2`,
		s.ID, s.QuotationID, s.Name, s.Date, s.Description, s.Subtotal, s.IsActive)
}

// DeleteSection removes the section and, through the foreign key, its items.
func (t quotationTx) DeleteSection(ctx context.Context, quotationID, id int64) error {
	return execOne(ctx, t.tx, `DELETE FROM quotation_sections WHERE id=$1 AND quotation_id=$2`, id, quotationID)
}

func (t quotationTx) Items(ctx context.Context, quotationID int64) ([]domain.QuotationItem, error) {
	return listItems(ctx, t.tx, quotationID)
}

func (t quotationTx) InsertItem(ctx context.Context, it *domain.QuotationItem) (*domain.QuotationItem, error) {
	row := t.tx.QueryRow(ctx, `
		INSERT INTO quotation_items (quotation_id, section_id, equipment_id, item_name, description, quantity, unit,
			price_per_day, days, total, remarks, type, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, now(), now())
		RETURNING `+itemColumns,
		it.QuotationID, it.SectionID, it.EquipmentID, it.ItemName, it.Description, it.Quantity, it.Unit,
		it.PricePerDay, it.Days, it.Total, it.Remarks, string(it.Type), it.IsActive)
	return scanItem(row)
}

func (t quotationTx) UpdateItem(ctx context.Context, it *domain.QuotationItem) error {
	return execOne(ctx, t.tx, `
		UPDATE quotation_items
		SET section_id=$3, equipment_id=$4, item_name=$5, description=$6, quantity=$7, unit=$8,
			price_per_day=$9, days=$10, total=$11, remarks=$12, type=$13, is_active=$14, updated_at=now()
		WHERE id=$1 AND quotation_id=$2`,
		it.ID, it.QuotationID, it.SectionID, it.EquipmentID, it.ItemName, it.Description, it.Quantity, it.Unit,
		it.PricePerDay, it.Days, it.Total, it.Remarks, string(it.Type), it.IsActive)
}

func (t quotationTx) DeleteItem(ctx context.Context, quotationID, id int64) error {
	return execOne(ctx, t.tx, `DELETE FROM quotation_items WHERE id=$1 AND quotation_id=$2`, id, quotationID)
}

func (t quotationTx) Equipment(ctx context.Context, id int64) (*domain.Equipment, error) {
	return getEquipment(ctx, t.tx, id)
}

func listSections(ctx context.Context, q db.Querier, quotationID int64) ([]domain.QuotationSection, error) {
	rows, err := q.Query(ctx, `SELECT `+sectionColumns+` FROM quotation_sections WHERE quotation_id=$1 ORDER BY date ASC NULLS LAST, id ASC`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.QuotationSection{}
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func listItems(ctx context.Context, q db.Querier, quotationID int64) ([]domain.QuotationItem, error) {
	rows, err := q.Query(ctx, `SELECT `+itemColumns+` FROM quotation_items WHERE quotation_id=$1 ORDER BY id ASC`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.QuotationItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func scanQuotation(row interface {
	Scan(dest ...any) error
}) (*domain.Quotation, error) {
	var (
		q      domain.Quotation
		status string
	)
	if err := row.Scan(
		&q.ID,
		&q.QuotationNumber,
		&q.ClientName,
		&q.ClientEmail,
		&q.ClientPhone,
		&q.ClientAddress,
		&q.ProjectName,
		&q.ProjectDescription,
		&q.IssueDate,
		&q.ValidUntil,
		&q.Subtotal,
		&q.Tax,
		&q.Discount,
		&q.Total,
		&status,
		&q.Notes,
		&q.Terms,
		&q.CreatedAt,
		&q.UpdatedAt,
	); err != nil {
		return nil, err
	}
	q.Status = domain.QuotationStatus(status)
	return &q, nil
}

func scanSection(row interface {
	Scan(dest ...any) error
}) (*domain.QuotationSection, error) {
	var s domain.QuotationSection
	if err := row.Scan(&s.ID, &s.QuotationID, &s.Name, &s.Date, &s.Description, &s.Subtotal, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanItem(row interface {
	Scan(dest ...any) error
}) (*domain.QuotationItem, error) {
	var (
		it  domain.QuotationItem
		typ string
	)
	if err := row.Scan(
		&it.ID,
		&it.QuotationID,
		&it.SectionID,
		&it.EquipmentID,
		&it.ItemName,
		&it.Description,
		&it.Quantity,
		&it.Unit,
		&it.PricePerDay,
		&it.Days,
		&it.Total,
		&it.Remarks,
		&typ,
		&it.IsActive,
		&it.CreatedAt,
		&it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	it.Type = domain.ItemType(typ)
	return &it, nil
}
