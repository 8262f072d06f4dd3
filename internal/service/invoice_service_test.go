package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/haulops-billing/internal/model"
	"github.com/nurpe/haulops-billing/internal/repository"
)

func TestInvoiceService_PreviewAcmeScenario(t *testing.T) {
	e := newEnv(t)
	a := e.fixedJob(t, day(2024, time.March, 1), "100")
	b := e.fixedJob(t, day(2024, time.March, 10), "150")
	c := e.fixedJob(t, day(2024, time.March, 15), "250")

	preview, err := e.invoices.Preview(context.Background(), CreateInvoiceInput{JobIDs: jobIDs(c, a, b)})
	require.NoError(t, err)

	assert.Equal(t, "INV-AC-7-240301-240315", preview.InvoiceNumber)
	assert.Equal(t, "500.00", preview.Totals.SubTotal.StringFixed(2))
	assert.Equal(t, "50.00", preview.Totals.Commission.StringFixed(2))
	assert.Equal(t, "71.50", preview.Totals.HST.StringFixed(2))
	assert.Equal(t, "621.50", preview.Totals.Total.StringFixed(2))
	assert.Equal(t, "Acme Corp", preview.BilledTo)
	assert.Equal(t, "ops@acme.test", preview.BilledEmail)
	assert.Equal(t, "2024-03-31", preview.InvoiceDate.Format("2006-01-02"))

	jobs, err := e.jobs.List(context.Background(), repository.JobFilter{Invoiced: boolPtr(true)})
	require.NoError(t, err)
	assert.Empty(t, jobs, "preview must not write")
}

func TestInvoiceService_PreviewOverrides(t *testing.T) {
	e := newEnv(t)
	a := e.fixedJob(t, day(2024, time.March, 1), "100")
	percent := decimal.NewFromInt(0)
	start, end := day(2024, time.February, 26), day(2024, time.March, 3)

	preview, err := e.invoices.Preview(context.Background(), CreateInvoiceInput{
		JobIDs:          jobIDs(a),
		DispatchPercent: &percent,
		BilledTo:        "Acme Accounts",
		PeriodStart:     &start,
		PeriodEnd:       &end,
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-AC-7-240226-240303", preview.InvoiceNumber)
	assert.Equal(t, "113.00", preview.Totals.Total.StringFixed(2))
	assert.Equal(t, "Acme Accounts", preview.BilledTo)
}

func TestInvoiceService_CreatePreconditions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.fixedJob(t, day(2024, time.March, 1), "100")
	other := e.dispatcherNamed(t, "Other Dispatch")
	b := e.fixedJobFor(t, other.ID, day(2024, time.March, 2), "100")

	_, err := e.invoices.Create(ctx, CreateInvoiceInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.invoices.Create(ctx, CreateInvoiceInput{JobIDs: jobIDs(a, b)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	missing := *a
	missing.ID = [16]byte{1}
	_, err = e.invoices.Create(ctx, CreateInvoiceInput{JobIDs: jobIDs(a, &missing)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	jobs, err := e.jobs.List(ctx, repository.JobFilter{Invoiced: boolPtr(true)})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestInvoiceService_CreateClaimsJobsOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.fixedJob(t, day(2024, time.March, 1), "100")
	b := e.fixedJob(t, day(2024, time.March, 2), "150")

	first, err := e.invoices.Create(ctx, CreateInvoiceInput{JobIDs: jobIDs(a)})
	require.NoError(t, err)
	assert.Equal(t, model.StatusRaised, first.Invoice.Status)
	require.Len(t, first.Jobs, 1)
	assert.Equal(t, model.StatusInvoiced, first.Jobs[0].InvoiceStatus)

	_, err = e.invoices.Create(ctx, CreateInvoiceInput{JobIDs: jobIDs(a, b)})
	assert.ErrorIs(t, err, ErrConflict)

	loose, err := e.jobs.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, loose.InvoiceID)

	reread, err := e.invoices.Get(ctx, first.Invoice.ID)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, line := range reread.Invoice.Lines {
		sum = sum.Add(line.LineAmount)
	}
	assert.True(t, sum.Equal(reread.Invoice.SubTotal))
}

func TestInvoiceService_DefaultNumberIsUnique(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.fixedJob(t, day(2024, time.March, 1), "100")
	b := e.fixedJob(t, day(2024, time.March, 1), "100")
	c := e.fixedJob(t, day(2024, time.March, 1), "100")

	first, err := e.invoices.Create(ctx, CreateInvoiceInput{JobIDs: jobIDs(a)})
	require.NoError(t, err)
	second, err := e.invoices.Create(ctx, CreateInvoiceInput{JobIDs: jobIDs(b)})
	require.NoError(t, err)

	assert.Equal(t, "INV-AC-7-240301-240301", first.Invoice.InvoiceNumber)
	assert.Equal(t, "INV-AC-7-240301-240301-2", second.Invoice.InvoiceNumber)

	_, err = e.invoices.Create(ctx, CreateInvoiceInput{JobIDs: jobIDs(c), InvoiceNumber: "INV-AC-7-240301-240301"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestInvoiceService_UpdateMembershipKeepsStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.fixedJob(t, day(2024, time.March, 1), "100")
	b := e.fixedJob(t, day(2024, time.March, 2), "150")
	c := e.fixedJob(t, day(2024, time.March, 3), "250")

	created, err := e.invoices.Create(ctx, CreateInvoiceInput{JobIDs: jobIDs(a, b)})
	require.NoError(t, err)
	id := created.Invoice.ID

	updated, err := e.invoices.Update(ctx, id, UpdateInvoiceInput{JobIDs: jobIDs(b, c)})
	require.NoError(t, err)
	assert.Equal(t, "400.00", updated.Invoice.SubTotal.StringFixed(2))
	assert.Equal(t, "497.20", updated.Invoice.Total.StringFixed(2))
	require.Len(t, updated.Jobs, 2)

	removed, err := e.jobs.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, removed.InvoiceID)
	assert.Equal(t, model.StatusPending, removed.InvoiceStatus)

	added, err := e.jobs.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, added.InvoiceStatus)

	status := "paid"
	percent := decimal.NewFromInt(0)
	updated, err = e.invoices.Update(ctx, id, UpdateInvoiceInput{Status: &status, DispatchPercent: &percent})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, updated.Invoice.Status)
	assert.Equal(t, "452.00", updated.Invoice.Total.StringFixed(2))
	for _, job := range updated.Jobs {
		assert.Equal(t, model.StatusPaid, job.InvoiceStatus)
	}
}

func TestInvoiceService_UpdateValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.fixedJob(t, day(2024, time.March, 1), "100")
	other := e.dispatcherNamed(t, "Other Dispatch")
	foreign := e.fixedJobFor(t, other.ID, day(2024, time.March, 2), "100")
	created, err := e.invoices.Create(ctx, CreateInvoiceInput{JobIDs: jobIDs(a)})
	require.NoError(t, err)
	id := created.Invoice.ID

	_, err = e.invoices.Update(ctx, id, UpdateInvoiceInput{JobIDs: jobIDs(foreign)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	bogus := "shredded"
	_, err = e.invoices.Update(ctx, id, UpdateInvoiceInput{Status: &bogus})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.invoices.Update(ctx, [16]byte{9}, UpdateInvoiceInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvoiceService_DeleteReleasesJobs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.fixedJob(t, day(2024, time.March, 1), "100")
	created, err := e.invoices.Create(ctx, CreateInvoiceInput{JobIDs: jobIDs(a)})
	require.NoError(t, err)

	require.NoError(t, e.invoices.Delete(ctx, created.Invoice.ID))
	assert.ErrorIs(t, e.invoices.Delete(ctx, created.Invoice.ID), ErrNotFound)

	job, err := e.jobs.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, job.InvoiceID)
	assert.Equal(t, model.StatusPending, job.InvoiceStatus)

	_, err = e.invoices.Create(ctx, CreateInvoiceInput{JobIDs: jobIDs(a)})
	assert.NoError(t, err, "released jobs can be invoiced again")
}

func TestInvoiceService_Documents(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.fixedJob(t, day(2024, time.March, 1), "100")
	_, err := e.jobs.AttachImage(ctx, a.ID, "broken.jpg", []byte("not a photo"))
	require.NoError(t, err)
	created, err := e.invoices.Create(ctx, CreateInvoiceInput{JobIDs: jobIDs(a)})
	require.NoError(t, err)

	doc, err := e.invoices.RenderPDF(ctx, created.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-AC-7-240301-240301.pdf", doc.FileName)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF")))
	assert.Contains(t, e.logs.String(), "ticket images skipped")

	sheet, err := e.invoices.ExportExcel(ctx, created.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-AC-7-240301-240301.xlsx", sheet.FileName)
	assert.NotEmpty(t, sheet.Content)
}

func TestDocumentName(t *testing.T) {
	invoice := &model.Invoice{ID: [16]byte{1}}
	assert.Equal(t, "invoice-01000000-0000-0000-0000-000000000000.pdf", documentName(invoice, "pdf"))
	invoice.InvoiceNumber = "INV-9"
	assert.Equal(t, "INV-9.pdf", documentName(invoice, "pdf"))
}

func boolPtr(v bool) *bool { return &v }
