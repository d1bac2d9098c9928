package export

import (
	"cinelight-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName   = "Quotation"
	ContentXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// XLSX renders the quotation as a single-sheet workbook.
func XLSX(q *domain.Quotation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	_ = f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	head, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	title, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
	})

	row := 1
	for _, kv := range headerFields(q) {
		setRow(f, row, kv[0], kv[1])
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellStyle(sheetName, cell, cell, bold)
		row++
	}
	row++

	setRow(f, row, toAny(lineHeader)...)
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(lineHeader), row)
	_ = f.SetCellStyle(sheetName, first, last, head)
	row++

	n := 1
	for _, g := range groups(q) {
		label := g.Title
		if label == "" {
			label = "Other items"
		}
		if g.Date != "" {
			label += " (" + g.Date + ")"
		}
		setRow(f, row, "", label)
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(lineHeader), row)
		_ = f.SetCellStyle(sheetName, first, last, title)
		row++
		for _, it := range g.Items {
			setRow(f, row, toAny(lineValues(n, it))...)
			n++
			row++
		}
		setRow(f, row, "", "", "", "", "", "", "Subtotal", g.Subtotal)
		row++
	}
	row++

	for _, kv := range totalFields(q) {
		setRow(f, row, "", "", "", "", "", "", kv[0], kv[1])
		cell, _ := excelize.CoordinatesToCellName(7, row)
		_ = f.SetCellStyle(sheetName, cell, cell, bold)
		row++
	}

	if q.Terms != "" || q.Notes != "" {
		row++
		setRow(f, row, "Notes", q.Notes)
		row++
		setRow(f, row, "Terms", q.Terms)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 14)
	_ = f.SetColWidth(sheetName, "B", "B", 30)
	_ = f.SetColWidth(sheetName, "C", "C", 30)
	_ = f.SetColWidth(sheetName, "D", "E", 8)
	_ = f.SetColWidth(sheetName, "F", "F", 14)
	_ = f.SetColWidth(sheetName, "G", "G", 16)
	_ = f.SetColWidth(sheetName, "H", "H", 14)
	_ = f.SetColWidth(sheetName, "I", "I", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values ...any) {
	for c, v := range values {
		cell, _ := excelize.CoordinatesToCellName(c+1, row)
		_ = f.SetCellValue(sheetName, cell, v)
	}
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
