package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/export"
	"cinelight-api/internal/metrics"
	"cinelight-api/internal/pagination"
	"cinelight-api/internal/pricing"
	"cinelight-api/internal/repository"
	"github.com/shopspring/decimal"
)

// maxNumberLen matches quotations.quotation_number VARCHAR(20).
const maxNumberLen = 20

type QuotationService struct {
	Quotations QuotationStore
	Logger     *slog.Logger
	Now        func() time.Time
}

type QuotationInput struct {
	QuotationNumber    *string
	ClientName         *string
	ClientEmail        *string
	ClientPhone        *string
	ClientAddress      *string
	ProjectName        *string
	ProjectDescription *string
	IssueDate          *time.Time
	ValidUntil         *time.Time
	Tax                *decimal.Decimal
	Discount           *decimal.Decimal
	Status             *domain.QuotationStatus
	Notes              *string
	Terms              *string
}

// CreateQuotationInput may carry sections with their items and unsectioned
// items; everything is created in one transaction.
type CreateQuotationInput struct {
	QuotationInput
	Sections []SectionInput
	Items    []ItemInput
}

type SectionInput struct {
	Name        *string
	Date        *time.Time
	Description *string
	IsActive    *bool
	Items       []ItemInput
}

type ItemInput struct {
	SectionID   *int64
	EquipmentID *int64
	ItemName    *string
	Description *string
	Quantity    *int
	Unit        *string
	PricePerDay *decimal.Decimal
	Days        *int
	Remarks     *string
	Type        *domain.ItemType
	IsActive    *bool
}

func (s QuotationService) Create(ctx context.Context, in CreateQuotationInput) (*domain.Quotation, error) {
	now := s.now()
	q := &domain.Quotation{
		IssueDate: dateOf(now),
		Status:    domain.StatusDraft,
		Tax:       decimal.Zero,
		Discount:  decimal.Zero,
	}
	applyQuotation(q, in.QuotationInput)
	if err := validateQuotation(q); err != nil {
		return nil, err
	}

	var id int64
	err := s.Quotations.InTx(ctx, func(tx repository.QuotationTx) error {
		if q.QuotationNumber == "" {
			number, err := s.nextNumber(ctx, tx, now)
			if err != nil {
				return err
			}
			q.QuotationNumber = number
		}
		created, err := tx.Insert(ctx, q)
		if err != nil {
			if repository.IsDuplicate(err) {
				return invalid("quotationNumber", "quotation number already exists")
			}
			return err
		}
		id = created.ID

		for _, sec := range in.Sections {
			if _, err := s.insertSection(ctx, tx, created.ID, sec); err != nil {
				return err
			}
		}
		for _, itemIn := range in.Items {
			itemIn.SectionID = nil
			if _, err := s.insertItem(ctx, tx, created.ID, nil, itemIn); err != nil {
				return err
			}
		}
		return s.recompute(ctx, tx, created)
	})
	if err != nil {
		return nil, err
	}
	metrics.QuotationsCreated.Inc()
	s.Logger.Info("quotation created", "id", id, "number", q.QuotationNumber)
	return s.Get(ctx, id)
}

// nextNumber must run in the creating transaction; the advisory lock keeps two
// creations in the same month from computing the same sequence.
func (s QuotationService) nextNumber(ctx context.Context, tx repository.QuotationTx, now time.Time) (string, error) {
	prefix := pricing.NumberPrefix(now)
	if err := tx.LockNumberPrefix(ctx, prefix); err != nil {
		return "", fmt.Errorf("lock number prefix: %w", err)
	}
	existing, err := tx.NumbersWithPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return pricing.NextQuotationNumber(now, existing), nil
}

// Get returns the quotation with its sections (each with its items) and all items.
func (s QuotationService) Get(ctx context.Context, id int64) (*domain.Quotation, error) {
	q, err := s.Quotations.Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr("Quotation", err)
	}
	sections, err := s.Quotations.Sections(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.Quotations.Items(ctx, id)
	if err != nil {
		return nil, err
	}
	attachChildren(q, sections, items)
	return q, nil
}

func (s QuotationService) List(ctx context.Context, f repository.QuotationFilter, p pagination.Params) (pagination.Page[domain.Quotation], error) {
	p = p.Normalize()
	if f.Status != "" && !domain.QuotationStatus(f.Status).Valid() {
		return pagination.Page[domain.Quotation]{}, invalid("status", "unknown status")
	}
	items, total, err := s.Quotations.List(ctx, f, p)
	if err != nil {
		return pagination.Page[domain.Quotation]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

// Update changes header fields and recomputes totals against the new tax and discount.
func (s QuotationService) Update(ctx context.Context, id int64, in QuotationInput) (*domain.Quotation, error) {
	err := s.Quotations.InTx(ctx, func(tx repository.QuotationTx) error {
		q, err := tx.Lock(ctx, id)
		if err != nil {
			return mapRepoErr("Quotation", err)
		}
		applyQuotation(q, in)
		if q.QuotationNumber == "" {
			return invalid("quotationNumber", "quotation number must not be empty")
		}
		if err := validateQuotation(q); err != nil {
			return err
		}
		err = s.recompute(ctx, tx, q)
		if repository.IsDuplicate(err) {
			return invalid("quotationNumber", "quotation number already exists")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s QuotationService) UpdateStatus(ctx context.Context, id int64, status domain.QuotationStatus) (*domain.Quotation, error) {
	if !status.Valid() {
		return nil, invalid("status", "unknown status")
	}
	err := s.Quotations.InTx(ctx, func(tx repository.QuotationTx) error {
		q, err := tx.Lock(ctx, id)
		if err != nil {
			return mapRepoErr("Quotation", err)
		}
		q.Status = status
		return tx.Update(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("quotation status changed", "id", id, "status", status)
	return s.Get(ctx, id)
}

// Delete removes the quotation with its sections and items.
func (s QuotationService) Delete(ctx context.Context, id int64) error {
	if err := s.Quotations.Delete(ctx, id); err != nil {
		return mapRepoErr("Quotation", err)
	}
	s.Logger.Info("quotation deleted", "id", id)
	return nil
}

// Document is a rendered quotation ready to be served as an attachment.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (s QuotationService) ExportExcel(ctx context.Context, id int64) (*Document, error) {
	return s.render(ctx, id, "xlsx", export.ContentXLSX, export.XLSX)
}

func (s QuotationService) ExportPDF(ctx context.Context, id int64) (*Document, error) {
	return s.render(ctx, id, "pdf", export.ContentPDF, export.PDF)
}

func (s QuotationService) render(ctx context.Context, id int64, ext, contentType string, fn func(*domain.Quotation) ([]byte, error)) (*Document, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := fn(q)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", ext, err)
	}
	return &Document{Filename: export.Filename(q, ext), ContentType: contentType, Data: data}, nil
}

func (s QuotationService) AddItem(ctx context.Context, quotationID int64, in ItemInput) (*domain.QuotationItem, error) {
	var out *domain.QuotationItem
	err := s.Quotations.InTx(ctx, func(tx repository.QuotationTx) error {
		q, err := tx.Lock(ctx, quotationID)
		if err != nil {
			return mapRepoErr("Quotation", err)
		}
		if in.SectionID != nil && *in.SectionID == 0 {
			in.SectionID = nil
		}
		if in.SectionID != nil {
			if _, err := findSection(ctx, tx, q.ID, *in.SectionID); err != nil {
				return err
			}
		}
		out, err = s.insertItem(ctx, tx, q.ID, in.SectionID, in)
		if err != nil {
			return err
		}
		return s.recompute(ctx, tx, q)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s QuotationService) UpdateItem(ctx context.Context, quotationID, itemID int64, in ItemInput) (*domain.QuotationItem, error) {
	var out *domain.QuotationItem
	err := s.Quotations.InTx(ctx, func(tx repository.QuotationTx) error {
		q, err := tx.Lock(ctx, quotationID)
		if err != nil {
			return mapRepoErr("Quotation", err)
		}
		item, err := findItem(ctx, tx, q.ID, itemID)
		if err != nil {
			return err
		}
		if in.SectionID != nil && *in.SectionID != 0 {
			if _, err := findSection(ctx, tx, q.ID, *in.SectionID); err != nil {
				return err
			}
		}
		equipmentChanged := in.EquipmentID != nil && (item.EquipmentID == nil || *item.EquipmentID != *in.EquipmentID)
		applyItem(item, in)
		if equipmentChanged {
			if err := fillFromEquipment(ctx, tx, item, in); err != nil {
				return err
			}
		}
		if err := priceItem(item); err != nil {
			return err
		}
		if err := tx.UpdateItem(ctx, item); err != nil {
			return mapRepoErr("Item", err)
		}
		out = item
		return s.recompute(ctx, tx, q)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s QuotationService) RemoveItem(ctx context.Context, quotationID, itemID int64) error {
	return s.Quotations.InTx(ctx, func(tx repository.QuotationTx) error {
		q, err := tx.Lock(ctx, quotationID)
		if err != nil {
			return mapRepoErr("Quotation", err)
		}
		if err := tx.DeleteItem(ctx, q.ID, itemID); err != nil {
			return mapRepoErr("Item", err)
		}
		return s.recompute(ctx, tx, q)
	})
}

func (s QuotationService) AddSection(ctx context.Context, quotationID int64, in SectionInput) (*domain.QuotationSection, error) {
	var out *domain.QuotationSection
	err := s.Quotations.InTx(ctx, func(tx repository.QuotationTx) error {
		q, err := tx.Lock(ctx, quotationID)
		if err != nil {
			return mapRepoErr("Quotation", err)
		}
		out, err = s.insertSection(ctx, tx, q.ID, in)
		if err != nil {
			return err
		}
		if err := s.recompute(ctx, tx, q); err != nil {
			return err
		}
		out, err = findSection(ctx, tx, q.ID, out.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s QuotationService) UpdateSection(ctx context.Context, quotationID, sectionID int64, in SectionInput) (*domain.QuotationSection, error) {
	var out *domain.QuotationSection
	err := s.Quotations.InTx(ctx, func(tx repository.QuotationTx) error {
		q, err := tx.Lock(ctx, quotationID)
		if err != nil {
			return mapRepoErr("Quotation", err)
		}
		sec, err := findSection(ctx, tx, q.ID, sectionID)
		if err != nil {
			return err
		}
		applySection(sec, in)
		if sec.Name == "" {
			return invalid("name", "name is required")
		}
		if err := tx.UpdateSection(ctx, sec); err != nil {
			return mapRepoErr("Section", err)
		}
		out = sec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveSection deletes the section together with its items and recomputes
// the quotation.
func (s QuotationService) RemoveSection(ctx context.Context, quotationID, sectionID int64) error {
	return s.Quotations.InTx(ctx, func(tx repository.QuotationTx) error {
		q, err := tx.Lock(ctx, quotationID)
		if err != nil {
			return mapRepoErr("Quotation", err)
		}
		if err := tx.DeleteSection(ctx, q.ID, sectionID); err != nil {
			return mapRepoErr("Section", err)
		}
		return s.recompute(ctx, tx, q)
	})
}

func (s QuotationService) insertSection(ctx context.Context, tx repository.QuotationTx, quotationID int64, in SectionInput) (*domain.QuotationSection, error) {
	sec := &domain.QuotationSection{QuotationID: quotationID, IsActive: true, Subtotal: decimal.Zero}
	applySection(sec, in)
	if sec.Name == "" {
		return nil, invalid("name", "section name is required")
	}
	created, err := tx.InsertSection(ctx, sec)
	if err != nil {
		return nil, err
	}
	for _, itemIn := range in.Items {
		if _, err := s.insertItem(ctx, tx, quotationID, &created.ID, itemIn); err != nil {
			return nil, err
		}
	}
	return created, nil
}

func (s QuotationService) insertItem(ctx context.Context, tx repository.QuotationTx, quotationID int64, sectionID *int64, in ItemInput) (*domain.QuotationItem, error) {
	item := &domain.QuotationItem{
		QuotationID: quotationID,
		Quantity:    1,
		Unit:        domain.DefaultItemUnit,
		Days:        1,
		Type:        domain.ItemRental,
		IsActive:    true,
	}
	applyItem(item, in)
	item.SectionID = sectionID
	if item.EquipmentID != nil {
		if err := fillFromEquipment(ctx, tx, item, in); err != nil {
			return nil, err
		}
	}
	if err := priceItem(item); err != nil {
		return nil, err
	}
	return tx.InsertItem(ctx, item)
}

// recompute reloads the quotation's children and persists every derived
// amount that changed, then the quotation totals.
func (s QuotationService) recompute(ctx context.Context, tx repository.QuotationTx, q *domain.Quotation) error {
	items, err := tx.Items(ctx, q.ID)
	if err != nil {
		return err
	}
	sections, err := tx.Sections(ctx, q.ID)
	if err != nil {
		return err
	}
	q.Items = items
	q.Sections = sections

	storedTotals := make([]decimal.Decimal, len(items))
	for i, it := range items {
		storedTotals[i] = it.Total
	}
	storedSubtotals := make([]decimal.Decimal, len(sections))
	for i, sec := range sections {
		storedSubtotals[i] = sec.Subtotal
	}

	totals := pricing.Recalculate(q)
	if totals.Subtotal.GreaterThan(pricing.MaxAmount) || totals.Total.GreaterThan(pricing.MaxAmount) {
		return invalid("total", "quotation total exceeds "+pricing.MaxAmount.StringFixed(2))
	}

	for i := range q.Items {
		if !q.Items[i].Total.Equal(storedTotals[i]) {
			if err := tx.UpdateItem(ctx, &q.Items[i]); err != nil {
				return err
			}
		}
	}
	for i := range q.Sections {
		if !q.Sections[i].Subtotal.Equal(storedSubtotals[i]) {
			if err := tx.UpdateSection(ctx, &q.Sections[i]); err != nil {
				return err
			}
		}
	}
	if err := tx.Update(ctx, q); err != nil {
		return err
	}
	metrics.QuotationRecomputes.Inc()
	s.Logger.Debug("quotation recomputed", "id", q.ID, "subtotal", totals.Subtotal.StringFixed(2), "total", totals.Total.StringFixed(2))
	return nil
}

func (s QuotationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// fillFromEquipment defaults the name and price of an equipment-backed item
// when the caller did not give them.
func fillFromEquipment(ctx context.Context, tx repository.QuotationTx, item *domain.QuotationItem, in ItemInput) error {
	eq, err := tx.Equipment(ctx, *item.EquipmentID)
	if err != nil {
		return mapRepoErr("Equipment", err)
	}
	if in.ItemName == nil {
		item.ItemName = eq.Name
	}
	if in.PricePerDay == nil {
		item.PricePerDay = eq.DailyRentalPrice
	}
	return nil
}

func findSection(ctx context.Context, tx repository.QuotationTx, quotationID, sectionID int64) (*domain.QuotationSection, error) {
	sections, err := tx.Sections(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	for i := range sections {
		if sections[i].ID == sectionID {
			return &sections[i], nil
		}
	}
	return nil, notFound("Section")
}

func findItem(ctx context.Context, tx repository.QuotationTx, quotationID, itemID int64) (*domain.QuotationItem, error) {
	items, err := tx.Items(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == itemID {
			return &items[i], nil
		}
	}
	return nil, notFound("Item")
}

func attachChildren(q *domain.Quotation, sections []domain.QuotationSection, items []domain.QuotationItem) {
	for i := range sections {
		sections[i].Items = []domain.QuotationItem{}
		for _, it := range items {
			if it.InSection(sections[i].ID) {
				sections[i].Items = append(sections[i].Items, it)
			}
		}
	}
	q.Sections = sections
	q.Items = items
}

func validateQuotation(q *domain.Quotation) error {
	var fields []FieldError
	if q.ClientName == "" {
		fields = append(fields, FieldError{Field: "clientName", Message: "clientName is required"})
	}
	if len(q.QuotationNumber) > maxNumberLen {
		fields = append(fields, FieldError{Field: "quotationNumber", Message: "must be at most 20 characters"})
	}
	if q.Tax.IsNegative() {
		fields = append(fields, FieldError{Field: "tax", Message: "must not be negative"})
	}
	if q.Discount.IsNegative() || q.Discount.GreaterThan(maxDiscount) {
		fields = append(fields, FieldError{Field: "discount", Message: "must be between 0 and 100"})
	}
	if !q.Status.Valid() {
		fields = append(fields, FieldError{Field: "status", Message: "unknown status"})
	}
	if q.ValidUntil != nil && q.ValidUntil.Before(q.IssueDate) {
		fields = append(fields, FieldError{Field: "validUntil", Message: "must not be before issueDate"})
	}
	if len(fields) > 0 {
		return ValidationError{Fields: fields}
	}
	return nil
}

// priceItem validates the item, rounds its price to cents and derives the
// total from the rounded price.
func priceItem(it *domain.QuotationItem) error {
	if err := validateItem(it); err != nil {
		return err
	}
	it.PricePerDay = pricing.Money(it.PricePerDay)
	it.Total = pricing.ItemTotal(it.Quantity, it.PricePerDay, it.Days)
	if it.Total.GreaterThan(pricing.MaxAmount) {
		return invalid("total", "quantity x pricePerDay x days exceeds "+pricing.MaxAmount.StringFixed(2))
	}
	return nil
}

func validateItem(it *domain.QuotationItem) error {
	var fields []FieldError
	if it.ItemName == "" {
		fields = append(fields, FieldError{Field: "itemName", Message: "itemName is required"})
	}
	if it.Quantity < 0 || it.Quantity > math.MaxInt32 {
		fields = append(fields, FieldError{Field: "quantity", Message: "must be between 0 and 2147483647"})
	}
	if it.PricePerDay.IsNegative() || it.PricePerDay.GreaterThan(pricing.MaxAmount) {
		fields = append(fields, FieldError{Field: "pricePerDay", Message: "must be between 0 and " + pricing.MaxAmount.StringFixed(2)})
	}
	if it.Days < 1 || it.Days > math.MaxInt32 {
		fields = append(fields, FieldError{Field: "days", Message: "must be between 1 and 2147483647"})
	}
	if !it.Type.Valid() {
		fields = append(fields, FieldError{Field: "type", Message: "must be one of rental, service, sale"})
	}
	if len(fields) > 0 {
		return ValidationError{Fields: fields}
	}
	return nil
}

func applyQuotation(q *domain.Quotation, in QuotationInput) {
	setString(&q.QuotationNumber, in.QuotationNumber)
	setString(&q.ClientName, in.ClientName)
	setString(&q.ClientEmail, in.ClientEmail)
	setString(&q.ClientPhone, in.ClientPhone)
	setString(&q.ClientAddress, in.ClientAddress)
	setString(&q.ProjectName, in.ProjectName)
	setString(&q.ProjectDescription, in.ProjectDescription)
	setString(&q.Notes, in.Notes)
	setString(&q.Terms, in.Terms)
	if in.IssueDate != nil {
		q.IssueDate = dateOf(*in.IssueDate)
	}
	if in.ValidUntil != nil {
		d := dateOf(*in.ValidUntil)
		q.ValidUntil = &d
	}
	if in.Tax != nil {
		q.Tax = *in.Tax
	}
	if in.Discount != nil {
		q.Discount = *in.Discount
	}
	if in.Status != nil {
		q.Status = *in.Status
	}
}

func applySection(s *domain.QuotationSection, in SectionInput) {
	setString(&s.Name, in.Name)
	setString(&s.Description, in.Description)
	if in.Date != nil {
		d := dateOf(*in.Date)
		s.Date = &d
	}
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
}

// applyItem copies the given fields. A SectionID of 0 detaches the item.
func applyItem(it *domain.QuotationItem, in ItemInput) {
	if in.SectionID != nil {
		if *in.SectionID == 0 {
			it.SectionID = nil
		} else {
			id := *in.SectionID
			it.SectionID = &id
		}
	}
	if in.EquipmentID != nil {
		id := *in.EquipmentID
		it.EquipmentID = &id
	}
	setString(&it.ItemName, in.ItemName)
	setString(&it.Description, in.Description)
	setString(&it.Unit, in.Unit)
	setString(&it.Remarks, in.Remarks)
	if in.Quantity != nil {
		it.Quantity = *in.Quantity
	}
	if in.PricePerDay != nil {
		it.PricePerDay = *in.PricePerDay
	}
	if in.Days != nil {
		it.Days = *in.Days
	}
	if in.Type != nil {
		it.Type = *in.Type
	}
	if in.IsActive != nil {
		it.IsActive = *in.IsActive
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
