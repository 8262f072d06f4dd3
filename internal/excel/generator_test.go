package excel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/haulops-billing/internal/render"
)

func TestGenerate_SummaryAndMonthSheets(t *testing.T) {
	march := render.Row{DateText: "2024-03-01", Unit: "Truck 7", Quantity: "1", Amount: "100.00"}
	april := render.Row{DateText: "2024-04-02", Unit: "Truck 7", Quantity: "3", Amount: "240.00"}
	doc := render.Document{
		Header: render.Header{InvoiceNumber: "INV-1", BilledTo: "Acme Corp"},
		Rows:   []render.Row{march, april},
		Months: []render.Month{
			{Label: "March 2024", Rows: []render.Row{march}},
			{Label: "April 2024", Rows: []render.Row{april}},
		},
		Totals: []render.TotalLine{{Label: "Total", Value: "$421.34"}},
	}

	out, err := NewGenerator().Generate(doc)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, []string{"Summary", "March 2024", "April 2024"}, file.GetSheetList())

	number, err := file.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "INV-1", number)

	amount, err := file.GetCellValue("April 2024", "I2")
	require.NoError(t, err)
	assert.Equal(t, "240", amount)

	unit, err := file.GetCellValue("March 2024", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Truck 7", unit)
}

func TestBuildSheetName(t *testing.T) {
	used := map[string]struct{}{"March 2024": {}}
	assert.Equal(t, "March 2024-2", buildSheetName("March 2024", used))
	assert.Equal(t, "a-b", buildSheetName("a/b", used))
	assert.Equal(t, "Lines", buildSheetName("  ", used))
}
