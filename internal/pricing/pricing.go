// Package pricing holds the quotation roll-up arithmetic. Every amount is a
// fixed-point decimal rounded to the two fraction digits the schema stores.
package pricing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cinelight-api/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	moneyPlaces  = 2
	numberPrefix = "QL"
	seqDigits    = 4
)

var hundred = decimal.NewFromInt(100)

// MaxAmount is the largest value a numeric(12,2) column holds.
var MaxAmount = decimal.New(999999999999, -moneyPlaces)

// Money rounds d to the stored precision.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// Totals is the derived money state of a quotation.
type Totals struct {
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// ItemTotal returns quantity * pricePerDay * days. Unset days count as one.
func ItemTotal(quantity int, pricePerDay decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 {
		days = 1
	}
	return pricePerDay.
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(decimal.NewFromInt(int64(days))).
		Round(moneyPlaces)
}

// SectionSubtotal sums the totals of the items attached to sectionID.
func SectionSubtotal(sectionID int64, items []domain.QuotationItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		if it.InSection(sectionID) {
			sum = sum.Add(it.Total)
		}
	}
	return sum.Round(moneyPlaces)
}

// QuotationTotals rolls every item up into the quotation, sectioned or not.
// tax and discount are percentages of the subtotal.
func QuotationTotals(items []domain.QuotationItem, tax, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total)
	}
	subtotal = subtotal.Round(moneyPlaces)
	taxAmount := subtotal.Mul(tax).Div(hundred)
	discountAmount := subtotal.Mul(discount).Div(hundred)
	return Totals{
		Subtotal:       subtotal,
		TaxAmount:      taxAmount.Round(moneyPlaces),
		DiscountAmount: discountAmount.Round(moneyPlaces),
		Total:          subtotal.Add(taxAmount).Sub(discountAmount).Round(moneyPlaces),
	}
}

// Recalculate refreshes every derived field of q in place: item totals,
// section subtotals and the quotation totals.
func Recalculate(q *domain.Quotation) Totals {
	for i := range q.Items {
		it := &q.Items[i]
		it.Total = ItemTotal(it.Quantity, it.PricePerDay, it.Days)
	}
	for i := range q.Sections {
		q.Sections[i].Subtotal = SectionSubtotal(q.Sections[i].ID, q.Items)
	}
	t := QuotationTotals(q.Items, q.Tax, q.Discount)
	q.Subtotal = t.Subtotal
	q.Total = t.Total
	return t
}

// NumberPrefix is the QL<YYYY><MM> prefix shared by a month's quotations.
func NumberPrefix(t time.Time) string {
	return fmt.Sprintf("%s%04d%02d", numberPrefix, t.Year(), int(t.Month()))
}

// NextQuotationNumber returns the next number in t's month given the numbers
// already issued. Numbers from other months are ignored.
func NextQuotationNumber(t time.Time, existing []string) string {
	prefix := NumberPrefix(t)
	max := 0
	for _, n := range existing {
		seq, ok := sequenceOf(prefix, n)
		if ok && seq > max {
			max = seq
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, seqDigits, max+1)
}

func sequenceOf(prefix, number string) (int, bool) {
	if !strings.HasPrefix(number, prefix) {
		return 0, false
	}
	seq, err := strconv.Atoi(number[len(prefix):])
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}
