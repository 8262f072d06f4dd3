package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"

	"github.com/nurpe/haulops-billing/internal/render"
)

const (
	fontName     = "Helvetica"
	pageWidth    = 297.0
	pageHeight   = 210.0
	margin       = 10.0
	rowHeight    = 7.0
	bottomMargin = 15.0
)

var colWidths = []float64{22, 22, 28, 36, 50, 39, 18, 28, 34}

// FileSource resolves the relative image paths stored on jobs.
type FileSource interface {
	Open(path string) ([]byte, error)
}

type Generator struct {
	log zerolog.Logger
}

func NewGenerator(log zerolog.Logger) *Generator {
	return &Generator{log: log.With().Str("component", "pdf").Logger()}
}

// Generate writes the invoice and, when any ticket photo can be read, the
// image section after it. files may be nil when no images should be added.
func (g *Generator) Generate(doc render.Document, files FileSource) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, bottomMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	addHeader(pdf, tr, doc.Header)
	pdf.Ln(6)

	pdf.SetFillColor(235, 235, 235)
	drawTableRow(pdf, tr, render.Columns, true)
	for _, month := range doc.Months {
		ensureSpace(pdf, tr, 2*rowHeight)
		pdf.SetFont(fontName, "B", 10)
		pdf.CellFormat(sum(colWidths), rowHeight, tr(month.Label), "1", 1, "L", true, 0, "")
		for _, row := range month.Rows {
			ensureSpace(pdf, tr, rowHeight)
			drawTableRow(pdf, tr, row.Cells(), false)
		}
	}

	pdf.Ln(4)
	ensureSpace(pdf, tr, float64(len(doc.Totals))*rowHeight)
	addTotals(pdf, tr, doc.Totals)

	if files != nil && len(doc.Images) > 0 {
		g.addImages(pdf, files, doc.Images)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func addHeader(pdf *gofpdf.Fpdf, tr func(string) string, header render.Header) {
	top := pdf.GetY()

	pdf.SetFont(fontName, "B", 16)
	pdf.CellFormat(140, 8, tr(header.Company.Name), "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	lines := []string{header.Company.Address}
	if header.Company.TaxNumber != "" {
		lines = append(lines, "HST/GST No: "+header.Company.TaxNumber)
	}
	lines = append(lines, header.Company.Email, header.Company.Phone)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		pdf.CellFormat(140, 5, tr(line), "", 1, "L", false, 0, "")
	}
	leftBottom := pdf.GetY()

	right := pageWidth - margin - 90
	pdf.SetXY(right, top)
	pdf.SetFont(fontName, "B", 20)
	pdf.CellFormat(90, 10, "INVOICE", "", 2, "R", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(90, 5, tr("Invoice #: "+safeValue(header.InvoiceNumber)), "", 2, "R", false, 0, "")
	pdf.CellFormat(90, 5, tr("Date: "+safeValue(header.InvoiceDate)), "", 2, "R", false, 0, "")

	if pdf.GetY() > leftBottom {
		leftBottom = pdf.GetY()
	}
	pdf.SetXY(margin, leftBottom+4)
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, "Bill To", "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(0, 5, tr(safeValue(header.BilledTo)), "", 1, "L", false, 0, "")
	if header.BilledEmail != "" {
		pdf.CellFormat(0, 5, tr(header.BilledEmail), "", 1, "L", false, 0, "")
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, cols []string, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		align := "L"
		if i >= 6 {
			align = "R"
		}
		pdf.CellFormat(colWidths[i], rowHeight, tr(fit(pdf, col, colWidths[i]-2)), "1", 0, align, header, 0, "")
	}
	pdf.Ln(-1)
}

func addTotals(pdf *gofpdf.Fpdf, tr func(string) string, totals []render.TotalLine) {
	labelWidth, valueWidth := 50.0, colWidths[len(colWidths)-1]
	left := pageWidth - margin - labelWidth - valueWidth
	for i, line := range totals {
		style := ""
		if i == len(totals)-1 {
			style = "B"
		}
		pdf.SetFont(fontName, style, 10)
		pdf.SetX(left)
		pdf.CellFormat(labelWidth, rowHeight, tr(line.Label), "", 0, "R", false, 0, "")
		pdf.CellFormat(valueWidth, rowHeight, tr(line.Value), "", 1, "R", false, 0, "")
	}
}

// ensureSpace starts a new page with the column header when h does not fit.
func ensureSpace(pdf *gofpdf.Fpdf, tr func(string) string, h float64) {
	if pdf.GetY()+h <= pageHeight-bottomMargin {
		return
	}
	pdf.AddPage()
	drawTableRow(pdf, tr, render.Columns, true)
}

// fit trims text so it stays inside a cell of width w.
func fit(pdf *gofpdf.Fpdf, text string, w float64) string {
	if pdf.GetStringWidth(text) <= w {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > w {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
