package excel

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/haulops-billing/internal/model"
)

const reportSheet = "Dispatchers"

var reportColumns = []string{"Dispatcher", "Jobs", "Gross", "Driver pay", "Est. fuel", "Est. revenue"}

// GenerateReport writes the per-dispatcher job summary on a single sheet,
// closed by a totals row.
func (g *Generator) GenerateReport(report model.JobReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, err
	}
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(reportSheet, cell, value)
	}

	set("A1", "Period")
	set("B1", fmt.Sprintf("%s - %s", report.PeriodStart.Format("2006-01-02"), report.PeriodEnd.Format("2006-01-02")))
	set("A2", "Invoiced")
	set("B2", invoicedLabel(report.Invoiced))
	set("A3", "Jobs")
	set("B3", report.TotalJobs)

	const headerRow = 5
	for i, header := range reportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, err
		}
		set(cell, header)
	}

	row := headerRow + 1
	for _, summary := range report.Rows {
		if err := writeSummaryRow(file, row, summary.DispatcherName, summary); err != nil {
			return nil, err
		}
		row++
	}
	if err := writeSummaryRow(file, row, "Total", report.Total); err != nil {
		return nil, err
	}

	_ = file.SetColWidth(reportSheet, "A", "A", 28)
	_ = file.SetColWidth(reportSheet, "B", "F", 14)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummaryRow(file *excelize.File, row int, label string, s model.DispatcherSummary) error {
	values := []interface{}{
		label,
		s.JobCount,
		money(s.GrossAmount),
		money(s.DriverPay),
		money(s.EstimatedFuel),
		money(s.EstimatedRevenue),
	}
	for c, value := range values {
		cell, err := excelize.CoordinatesToCellName(c+1, row)
		if err != nil {
			return err
		}
		_ = file.SetCellValue(reportSheet, cell, value)
	}
	return nil
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func invoicedLabel(invoiced *bool) string {
	switch {
	case invoiced == nil:
		return "All"
	case *invoiced:
		return "Yes"
	default:
		return "No"
	}
}
