package excel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/haulops-billing/internal/render"
)

const (
	summarySheet = "Summary"
	maxSheetName = 31
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds a workbook with a summary sheet and one sheet of lines per
// calendar month of the invoice.
func (g *Generator) Generate(doc render.Document) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := g.writeSummary(file, summarySheet, doc); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, month := range doc.Months {
		sheetName := buildSheetName(month.Label, usedNames)
		usedNames[sheetName] = struct{}{}

		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", sheetName, err)
		}
		if err := g.writeMonth(file, sheetName, month); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, doc render.Document) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	header := doc.Header
	set("A1", "Company")
	set("B1", header.Company.Name)
	set("A2", "Invoice #")
	set("B2", header.InvoiceNumber)
	set("A3", "Invoice date")
	set("B3", header.InvoiceDate)
	set("A4", "Dispatcher")
	set("B4", header.DispatcherName)
	set("A5", "Billed to")
	set("B5", header.BilledTo)
	set("A6", "Billed email")
	set("B6", header.BilledEmail)
	set("A7", "Jobs")
	set("B7", len(doc.Rows))

	row := 9
	set(fmt.Sprintf("A%d", row), "Month")
	set(fmt.Sprintf("B%d", row), "Jobs")
	for i, month := range doc.Months {
		set(fmt.Sprintf("A%d", row+1+i), month.Label)
		set(fmt.Sprintf("B%d", row+1+i), len(month.Rows))
	}

	row += len(doc.Months) + 2
	for i, line := range doc.Totals {
		set(fmt.Sprintf("A%d", row+i), line.Label)
		set(fmt.Sprintf("B%d", row+i), line.Value)
	}

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "B", 36)
	return nil
}

func (g *Generator) writeMonth(file *excelize.File, sheet string, month render.Month) error {
	for i, header := range render.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		_ = file.SetCellValue(sheet, cell, header)
	}

	for r, row := range month.Rows {
		for c, value := range row.Cells() {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			_ = file.SetCellValue(sheet, cell, cellValue(c, value))
		}
	}

	_ = file.SetColWidth(sheet, "A", "C", 14)
	_ = file.SetColWidth(sheet, "D", "F", 28)
	_ = file.SetColWidth(sheet, "G", "I", 12)
	return nil
}

// cellValue keeps the amount column numeric so the sheet can be summed.
func cellValue(column int, value string) interface{} {
	if column != len(render.Columns)-1 || value == "" {
		return value
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

func buildSheetName(label string, used map[string]struct{}) string {
	base := sanitizeSheetName(label)
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		nameCandidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = strings.TrimSpace(replacer.Replace(value))
	if value == "" {
		return "Lines"
	}
	return value
}
