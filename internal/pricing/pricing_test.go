package pricing

import (
	"testing"
	"time"

	"cinelight-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sectionID(id int64) *int64 { return &id }

func TestItemTotal(t *testing.T) {
	tests := []struct {
		name     string
		qty      int
		price    string
		days     int
		expected string
	}{
		{"simple", 2, "150.00", 3, "900"},
		{"unset days count as one", 4, "25.50", 0, "102"},
		{"negative days count as one", 1, "10", -2, "10"},
		{"fractional price rounds to cents", 3, "0.335", 1, "1.01"},
		{"zero quantity", 0, "99.99", 5, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ItemTotal(tt.qty, dec(tt.price), tt.days)
			assert.True(t, dec(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestSectionSubtotal(t *testing.T) {
	items := []domain.QuotationItem{
		{SectionID: sectionID(1), Total: dec("100.10")},
		{SectionID: sectionID(1), Total: dec("50.05")},
		{SectionID: sectionID(2), Total: dec("999")},
		{Total: dec("7")},
	}

	t.Run("sums only the section's items", func(t *testing.T) {
		assert.True(t, dec("150.15").Equal(SectionSubtotal(1, items)))
	})
	t.Run("empty section is zero", func(t *testing.T) {
		assert.True(t, decimal.Zero.Equal(SectionSubtotal(3, items)))
	})
}

func TestQuotationTotals(t *testing.T) {
	t.Run("tax and discount are percentages of subtotal", func(t *testing.T) {
		items := []domain.QuotationItem{
			{SectionID: sectionID(1), Total: dec("1000")},
			{Total: dec("500")},
		}
		got := QuotationTotals(items, dec("10"), dec("5"))
		assert.True(t, dec("1500").Equal(got.Subtotal))
		assert.True(t, dec("150").Equal(got.TaxAmount))
		assert.True(t, dec("75").Equal(got.DiscountAmount))
		assert.True(t, dec("1575").Equal(got.Total))
	})

	t.Run("independent of section distribution", func(t *testing.T) {
		a := []domain.QuotationItem{
			{SectionID: sectionID(1), Total: dec("300")},
			{SectionID: sectionID(1), Total: dec("200.25")},
		}
		b := []domain.QuotationItem{
			{Total: dec("300")},
			{SectionID: sectionID(9), Total: dec("200.25")},
		}
		ta := QuotationTotals(a, dec("11"), dec("2.5"))
		tb := QuotationTotals(b, dec("11"), dec("2.5"))
		assert.True(t, ta.Total.Equal(tb.Total))
		assert.True(t, dec("542.77").Equal(ta.Total), "got %s", ta.Total)
	})

	t.Run("no items", func(t *testing.T) {
		got := QuotationTotals(nil, dec("10"), dec("5"))
		assert.True(t, got.Subtotal.IsZero())
		assert.True(t, got.Total.IsZero())
	})
}

func TestRecalculate(t *testing.T) {
	q := &domain.Quotation{
		Tax:      dec("10"),
		Discount: dec("0"),
		Sections: []domain.QuotationSection{{ID: 1}, {ID: 2}},
		Items: []domain.QuotationItem{
			{SectionID: sectionID(1), Quantity: 2, PricePerDay: dec("100"), Days: 2},
			{SectionID: sectionID(1), Quantity: 1, PricePerDay: dec("50"), Days: 1},
			{Quantity: 1, PricePerDay: dec("10"), Days: 0},
		},
	}

	totals := Recalculate(q)

	assert.True(t, dec("400").Equal(q.Items[0].Total))
	assert.True(t, dec("10").Equal(q.Items[2].Total))
	assert.True(t, dec("450").Equal(q.Sections[0].Subtotal))
	assert.True(t, q.Sections[1].Subtotal.IsZero())
	assert.True(t, dec("460").Equal(q.Subtotal))
	assert.True(t, dec("506").Equal(q.Total))
	assert.True(t, dec("46").Equal(totals.TaxAmount))
}

func TestNextQuotationNumber(t *testing.T) {
	march := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

	t.Run("first of month", func(t *testing.T) {
		assert.Equal(t, "QL2024030001", NextQuotationNumber(march, nil))
	})
	t.Run("increments max suffix", func(t *testing.T) {
		got := NextQuotationNumber(march, []string{"QL2024030002", "QL2024030007", "QL2024030003"})
		assert.Equal(t, "QL2024030008", got)
	})
	t.Run("new month resets", func(t *testing.T) {
		april := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
		got := NextQuotationNumber(april, []string{"QL2024030099"})
		assert.Equal(t, "QL2024040001", got)
	})
	t.Run("ignores malformed numbers", func(t *testing.T) {
		got := NextQuotationNumber(march, []string{"QL202403abcd", "X2024030050", "QL2024030004"})
		assert.Equal(t, "QL2024030005", got)
	})
	t.Run("prefix", func(t *testing.T) {
		assert.Equal(t, "QL202412", NumberPrefix(time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)))
	})
}

func TestMoney(t *testing.T) {
	assert.True(t, dec("0.33").Equal(Money(dec("0.333"))))
	assert.True(t, dec("2.50").Equal(Money(dec("2.499"))))
	assert.Equal(t, "9999999999.99", MaxAmount.StringFixed(2))
}
