package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enumerations
const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"

	StatusDraft              QuotationStatus = "draft"
	StatusSent               QuotationStatus = "sent"
	StatusApproved           QuotationStatus = "approved"
	StatusRejected           QuotationStatus = "rejected"
	StatusConvertedToDO      QuotationStatus = "converted_to_do"
	StatusConvertedToInvoice QuotationStatus = "converted_to_invoice"

	ItemRental  ItemType = "rental"
	ItemService ItemType = "service"
	ItemSale    ItemType = "sale"
)

const DefaultItemUnit = "Set"

type UserRole string
type QuotationStatus string
type ItemType string

// Valid reports whether s is one of the known quotation statuses.
func (s QuotationStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusApproved, StatusRejected, StatusConvertedToDO, StatusConvertedToInvoice:
		return true
	}
	return false
}

func (t ItemType) Valid() bool {
	switch t {
	case ItemRental, ItemService, ItemSale:
		return true
	}
	return false
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	FirstName    string
	LastName     string
	IsActive     bool
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type EquipmentCategory struct {
	ID          int64
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Equipment []Equipment
}

type Equipment struct {
	ID               int64
	Name             string
	Description      string
	DailyRentalPrice decimal.Decimal
	Quantity         int
	CategoryID       int64
	CategoryName     string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EquipmentBundle carries an operator-set price and discount; neither is
// derived from the member equipment.
type EquipmentBundle struct {
	ID               int64
	Name             string
	Description      string
	DailyRentalPrice decimal.Decimal
	Discount         decimal.Decimal
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Items []EquipmentBundleItem
}

type EquipmentBundleItem struct {
	ID          int64
	BundleID    int64
	EquipmentID int64
	Quantity    int
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Equipment *Equipment
}

type Quotation struct {
	ID                 int64
	QuotationNumber    string
	ClientName         string
	ClientEmail        string
	ClientPhone        string
	ClientAddress      string
	ProjectName        string
	ProjectDescription string
	IssueDate          time.Time
	ValidUntil         *time.Time
	Subtotal           decimal.Decimal
	Tax                decimal.Decimal
	Discount           decimal.Decimal
	Total              decimal.Decimal
	Status             QuotationStatus
	Notes              string
	Terms              string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Sections []QuotationSection
	Items    []QuotationItem
}

type QuotationSection struct {
	ID          int64
	QuotationID int64
	Name        string
	Date        *time.Time
	Description string
	Subtotal    decimal.Decimal
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Items []QuotationItem
}

type QuotationItem struct {
	ID          int64
	QuotationID int64
	SectionID   *int64
	EquipmentID *int64
	ItemName    string
	Description string
	Quantity    int
	Unit        string
	PricePerDay decimal.Decimal
	Days        int
	Total       decimal.Decimal
	Remarks     string
	Type        ItemType
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InSection reports whether the item is attached to the given section.
func (it QuotationItem) InSection(sectionID int64) bool {
	return it.SectionID != nil && *it.SectionID == sectionID
}
