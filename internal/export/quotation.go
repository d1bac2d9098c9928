// Package export renders a quotation as a downloadable document.
package export

import (
	"fmt"
	"strconv"
	"time"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/pricing"
)

const dateLayout = "2006-01-02"

var lineHeader = []string{"No", "Item", "Description", "Qty", "Unit", "Price/Day", "Days", "Total", "Remarks"}

// group is one block of lines in the rendered document. Unsectioned items
// form the last group with an empty title.
type group struct {
	Title    string
	Date     string
	Subtotal string
	Items    []domain.QuotationItem
}

func groups(q *domain.Quotation) []group {
	out := make([]group, 0, len(q.Sections)+1)
	for _, s := range q.Sections {
		out = append(out, group{
			Title:    s.Name,
			Date:     formatDate(s.Date),
			Subtotal: s.Subtotal.StringFixed(2),
			Items:    s.Items,
		})
	}
	var loose []domain.QuotationItem
	for _, it := range q.Items {
		if it.SectionID == nil {
			loose = append(loose, it)
		}
	}
	if len(loose) > 0 {
		sub := pricing.QuotationTotals(loose, q.Tax, q.Discount).Subtotal
		out = append(out, group{Title: "", Subtotal: sub.StringFixed(2), Items: loose})
	}
	return out
}

func lineValues(n int, it domain.QuotationItem) []string {
	return []string{
		strconv.Itoa(n),
		it.ItemName,
		it.Description,
		strconv.Itoa(it.Quantity),
		it.Unit,
		it.PricePerDay.StringFixed(2),
		strconv.Itoa(it.Days),
		it.Total.StringFixed(2),
		it.Remarks,
	}
}

// headerFields is the label/value block printed above the lines.
func headerFields(q *domain.Quotation) [][2]string {
	return [][2]string{
		{"Quotation No", q.QuotationNumber},
		{"Client", q.ClientName},
		{"Email", q.ClientEmail},
		{"Phone", q.ClientPhone},
		{"Address", q.ClientAddress},
		{"Project", q.ProjectName},
		{"Issue Date", q.IssueDate.Format(dateLayout)},
		{"Valid Until", formatDate(q.ValidUntil)},
		{"Status", string(q.Status)},
	}
}

func totalFields(q *domain.Quotation) [][2]string {
	t := pricing.QuotationTotals(q.Items, q.Tax, q.Discount)
	return [][2]string{
		{"Subtotal", t.Subtotal.StringFixed(2)},
		{fmt.Sprintf("Tax (%s%%)", q.Tax.String()), t.TaxAmount.StringFixed(2)},
		{fmt.Sprintf("Discount (%s%%)", q.Discount.String()), "-" + t.DiscountAmount.StringFixed(2)},
		{"Total", t.Total.StringFixed(2)},
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// Filename is the attachment name for the given extension, e.g. "quotation-QL2024050001.pdf".
func Filename(q *domain.Quotation, ext string) string {
	return "quotation-" + q.QuotationNumber + "." + ext
}
