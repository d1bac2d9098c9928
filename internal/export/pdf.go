package export

import (
	"bytes"

	"cinelight-api/internal/domain"
	"github.com/phpdave11/gofpdf"
)

const ContentPDF = "application/pdf"

// column widths in mm; they sum to the A4 printable width with 10mm margins.
var pdfCols = []float64{8, 40, 42, 10, 12, 20, 10, 22, 26}

// PDF renders the quotation as an A4 portrait document.
func PDF(q *domain.Quotation) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle("Quotation "+q.QuotationNumber, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "QUOTATION", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, kv := range headerFields(q) {
		if kv[1] == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(30, 5, tr(kv[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 5, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(31, 41, 55)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range lineHeader {
		pdf.CellFormat(pdfCols[i], 6, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)

	n := 1
	for _, g := range groups(q) {
		label := g.Title
		if label == "" {
			label = "Other items"
		}
		if g.Date != "" {
			label += " (" + g.Date + ")"
		}
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(229, 231, 235)
		pdf.CellFormat(sum(pdfCols), 6, tr(label), "1", 1, "L", true, 0, "")

		pdf.SetFont("Helvetica", "", 8)
		for _, it := range g.Items {
			for i, v := range lineValues(n, it) {
				align := "L"
				if i == 0 || i == 3 || i == 5 || i == 6 || i == 7 {
					align = "R"
				}
				pdf.CellFormat(pdfCols[i], 6, tr(v), "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
			n++
		}
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(sum(pdfCols[:7]), 6, "Subtotal", "1", 0, "R", false, 0, "")
		pdf.CellFormat(pdfCols[7], 6, g.Subtotal, "1", 0, "R", false, 0, "")
		pdf.CellFormat(pdfCols[8], 6, "", "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	for _, kv := range totalFields(q) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(sum(pdfCols[:7]), 6, kv[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(pdfCols[7], 6, kv[1], "", 1, "R", false, 0, "")
	}

	if q.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 5, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, tr(q.Notes), "", "L", false)
	}
	if q.Terms != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 5, "Terms", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, tr(q.Terms), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sum(v []float64) float64 {
	var t float64
	for _, x := range v {
		t += x
	}
	return t
}
