package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/haulops-billing/internal/model"
)

func TestReportService_SummaryListsEveryDispatcher(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	zed := e.dispatcherNamed(t, "Zed Hauling")
	a := e.fixedJob(t, day(2024, time.March, 1), "100.25")
	e.fixedJob(t, day(2024, time.March, 31), "150.5")
	e.fixedJob(t, day(2024, time.April, 1), "999")

	_, err := e.invoices.Create(ctx, CreateInvoiceInput{JobIDs: jobIDs(a)})
	require.NoError(t, err)

	report, err := e.reports.Summary(ctx, ReportInput{
		PeriodStart: day(2024, time.March, 1),
		PeriodEnd:   day(2024, time.March, 31),
	})
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "Acme Corp", report.Rows[0].DispatcherName)
	assert.Equal(t, int64(2), report.Rows[0].JobCount)
	assert.Equal(t, "250.75", report.Rows[0].GrossAmount.StringFixed(2))
	assert.Equal(t, zed.ID, report.Rows[1].DispatcherID)
	assert.Equal(t, int64(0), report.Rows[1].JobCount)
	assert.True(t, report.Rows[1].GrossAmount.IsZero())
	assert.Equal(t, int64(2), report.TotalJobs)
	assert.Equal(t, "250.75", report.Total.GrossAmount.StringFixed(2))

	pending := false
	report, err = e.reports.Summary(ctx, ReportInput{
		PeriodStart: day(2024, time.March, 1),
		PeriodEnd:   day(2024, time.March, 31),
		Invoiced:    &pending,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.TotalJobs)
	assert.Equal(t, "150.50", report.Total.GrossAmount.StringFixed(2))

	report, err = e.reports.Summary(ctx, ReportInput{
		PeriodStart: day(2024, time.March, 1),
		PeriodEnd:   day(2024, time.March, 31),
		Statuses:    []model.InvoiceStatus{"invoiced"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.TotalJobs)
	assert.Equal(t, []model.InvoiceStatus{model.StatusInvoiced}, report.Statuses)
}

func TestReportService_SummaryValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.reports.Summary(ctx, ReportInput{PeriodStart: day(2024, time.March, 1)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.reports.Summary(ctx, ReportInput{
		PeriodStart: day(2024, time.April, 1),
		PeriodEnd:   day(2024, time.March, 1),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.reports.Summary(ctx, ReportInput{
		PeriodStart: day(2024, time.March, 1),
		PeriodEnd:   day(2024, time.March, 31),
		Statuses:    []model.InvoiceStatus{"overdue"},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReportService_Export(t *testing.T) {
	e := newEnv(t)
	e.fixedJob(t, day(2024, time.March, 5), "80")

	doc, err := e.reports.Export(context.Background(), ReportInput{
		PeriodStart: day(2024, time.March, 1),
		PeriodEnd:   day(2024, time.March, 31),
	})
	require.NoError(t, err)
	assert.Equal(t, "job-summary-20240301-20240331.xlsx", doc.FileName)
	assert.Equal(t, excelContentType, doc.ContentType)

	file, err := excelize.OpenReader(bytes.NewReader(doc.Content))
	require.NoError(t, err)
	defer file.Close()
	name, err := file.GetCellValue("Dispatchers", "A6")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", name)
}

func TestMergeSummaries(t *testing.T) {
	base := []model.DispatcherSummary{{DispatcherID: uuid.New(), DispatcherName: "Acme Corp"}}
	sums := []model.DispatcherSummary{
		{DispatcherID: base[0].DispatcherID, DispatcherName: "stale", JobCount: 3},
		{DispatcherName: "Unknown", JobCount: 1},
	}
	merged := mergeSummaries(base, sums)
	require.Len(t, merged, 2)
	assert.Equal(t, "Acme Corp", merged[0].DispatcherName)
	assert.Equal(t, int64(3), merged[0].JobCount)
	assert.Equal(t, "Unknown", merged[1].DispatcherName)
}
