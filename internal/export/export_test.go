package export

import (
	"bytes"
	"testing"
	"time"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleQuotation() *domain.Quotation {
	sectionID := int64(10)
	shootDay := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	q := &domain.Quotation{
		ID:              1,
		QuotationNumber: "QL2024050001",
		ClientName:      "Northwind Films",
		ProjectName:     "Café commercial",
		IssueDate:       time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Tax:             decimal.NewFromInt(10),
		Discount:        decimal.NewFromInt(5),
		Status:          domain.StatusDraft,
		Notes:           "Crew call 06:00",
		Sections: []domain.QuotationSection{
			{ID: sectionID, QuotationID: 1, Name: "Day 1", Date: &shootDay},
		},
		Items: []domain.QuotationItem{
			{ID: 1, QuotationID: 1, SectionID: &sectionID, ItemName: "SkyPanel S60", Quantity: 2, Unit: "Set", PricePerDay: decimal.NewFromInt(250), Days: 3},
			{ID: 2, QuotationID: 1, ItemName: "Transport", Quantity: 1, Unit: "Trip", PricePerDay: decimal.NewFromInt(75), Days: 1, Type: domain.ItemService},
		},
	}
	pricing.Recalculate(q)
	q.Sections[0].Items = []domain.QuotationItem{q.Items[0]}
	return q
}

func TestGroupsPutsUnsectionedItemsLast(t *testing.T) {
	g := groups(sampleQuotation())
	require.Len(t, g, 2)
	assert.Equal(t, "Day 1", g[0].Title)
	assert.Equal(t, "2024-05-20", g[0].Date)
	assert.Equal(t, "1500.00", g[0].Subtotal)
	assert.Equal(t, "", g[1].Title)
	assert.Equal(t, "75.00", g[1].Subtotal)
	require.Len(t, g[1].Items, 1)
	assert.Equal(t, "Transport", g[1].Items[0].ItemName)
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(sampleQuotation())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())
	number, err := f.GetCellValue(sheetName, "B1")
	require.NoError(t, err)
	assert.Equal(t, "QL2024050001", number)

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	var total string
	for _, r := range rows {
		if len(r) >= 8 && r[6] == "Total" {
			total = r[7]
		}
	}
	// 1575 + 10% - 5%
	assert.Equal(t, "1653.75", total)
}

func TestPDF(t *testing.T) {
	data, err := PDF(sampleQuotation())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "quotation-QL2024050001.xlsx", Filename(sampleQuotation(), "xlsx"))
}
