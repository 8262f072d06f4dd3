package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nurpe/haulops-billing/internal/billing"
	"github.com/nurpe/haulops-billing/internal/model"
)

func withTotals(invoice *model.Invoice, jobs ...model.Job) *model.Invoice {
	amounts := make([]decimal.Decimal, 0, len(jobs))
	for _, j := range jobs {
		amounts = append(amounts, j.JobGrossAmount)
	}
	totals := billing.ComputeTotals(amounts, invoice.DispatchPercent)
	invoice.SubTotal = totals.SubTotal
	invoice.Commission = totals.Commission
	invoice.HST = totals.HST
	invoice.Total = totals.Total
	return invoice
}

func TestInvoiceRepository_CreateClaimsJobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.job(t, date(2024, time.March, 1), "100")
	b := f.job(t, date(2024, time.March, 2), "150")
	c := f.job(t, date(2024, time.March, 3), "250")

	invoice := withTotals(f.invoice("INV-AC-7-240301-240303"), a, b, c)
	require.NoError(t, f.invoices.Create(ctx, invoice, []model.Job{a, b, c}))
	assert.Len(t, invoice.Lines, 3)

	loaded, err := f.invoices.Get(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "500.00", loaded.SubTotal.StringFixed(2))
	assert.Equal(t, "621.50", loaded.Total.StringFixed(2))
	assert.Equal(t, model.StatusRaised, loaded.Status)
	require.NotNil(t, loaded.Dispatcher)
	assert.Equal(t, "Acme Corp", loaded.Dispatcher.Name)

	sum := decimal.Zero
	for _, line := range loaded.Lines {
		sum = sum.Add(line.LineAmount)
	}
	assert.True(t, sum.Equal(loaded.SubTotal), "lines %s subtotal %s", sum, loaded.SubTotal)

	for _, id := range ids(a, b, c) {
		job, err := f.jobs.Get(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, job.InvoiceID)
		assert.Equal(t, invoice.ID, *job.InvoiceID)
		assert.Equal(t, model.StatusInvoiced, job.InvoiceStatus)
	}
}

func TestInvoiceRepository_CreateRejectsClaimedJobWithoutPartialWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shared := f.job(t, date(2024, time.March, 1), "100")
	other := f.job(t, date(2024, time.March, 2), "150")

	first := f.invoice("INV-A")
	require.NoError(t, f.invoices.Create(ctx, first, []model.Job{shared}))

	second := f.invoice("INV-B")
	err := f.invoices.Create(ctx, second, []model.Job{other, shared})
	assert.ErrorIs(t, err, ErrJobClaimed)

	_, err = f.invoices.Get(ctx, second.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	untouched, err := f.jobs.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Nil(t, untouched.InvoiceID)
	assert.Equal(t, model.StatusPending, untouched.InvoiceStatus)

	winner, err := f.jobs.Get(ctx, shared.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, *winner.InvoiceID)

	count, err := f.invoices.CountLines(ctx, second.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestInvoiceRepository_DeleteReleasesJobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.job(t, date(2024, time.March, 1), "100")
	b := f.job(t, date(2024, time.March, 2), "150")
	invoice := withTotals(f.invoice("INV-1"), a, b)
	require.NoError(t, f.invoices.Create(ctx, invoice, []model.Job{a, b}))

	require.NoError(t, f.invoices.Delete(ctx, invoice.ID))

	count, err := f.invoices.CountLines(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	for _, id := range ids(a, b) {
		job, err := f.jobs.Get(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, job.InvoiceID)
		assert.Equal(t, model.StatusPending, job.InvoiceStatus)
	}

	_, err = f.invoices.Get(ctx, invoice.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, f.invoices.Delete(ctx, invoice.ID), gorm.ErrRecordNotFound)
}

func TestInvoiceRepository_UpdateMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.job(t, date(2024, time.March, 1), "100")
	b := f.job(t, date(2024, time.March, 2), "150")
	c := f.job(t, date(2024, time.March, 3), "250")
	invoice := withTotals(f.invoice("INV-1"), a, b)
	require.NoError(t, f.invoices.Create(ctx, invoice, []model.Job{a, b}))

	loaded, err := f.invoices.Get(ctx, invoice.ID)
	require.NoError(t, err)
	err = f.invoices.Update(ctx, loaded, MembershipChange{
		Add:    []model.Job{c},
		Remove: ids(a),
	})
	require.NoError(t, err)
	assert.Equal(t, "400.00", loaded.SubTotal.StringFixed(2))
	assert.Equal(t, "40.00", loaded.Commission.StringFixed(2))
	assert.Equal(t, "57.20", loaded.HST.StringFixed(2))
	assert.Equal(t, "497.20", loaded.Total.StringFixed(2))

	removed, err := f.jobs.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, removed.InvoiceID)
	assert.Equal(t, model.StatusPending, removed.InvoiceStatus)

	added, err := f.jobs.Get(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, added.InvoiceID)
	assert.Equal(t, invoice.ID, *added.InvoiceID)
	assert.Equal(t, model.StatusPending, added.InvoiceStatus, "membership edits do not touch status")

	kept, err := f.jobs.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInvoiced, kept.InvoiceStatus)

	reloaded, err := f.invoices.Get(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Lines, 2)
	assert.Equal(t, "497.20", reloaded.Total.StringFixed(2))
}

func TestInvoiceRepository_UpdateStatusPropagates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.job(t, date(2024, time.March, 1), "100")
	invoice := withTotals(f.invoice("INV-1"), a)
	require.NoError(t, f.invoices.Create(ctx, invoice, []model.Job{a}))

	paid := model.StatusPaid
	invoice.Status = paid
	require.NoError(t, f.invoices.Update(ctx, invoice, MembershipChange{JobStatus: &paid}))

	job, err := f.jobs.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, job.InvoiceStatus)

	loaded, err := f.invoices.Get(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, loaded.Status)
}

func TestInvoiceRepository_NumberExists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	invoice := f.invoice("INV-1")
	require.NoError(t, f.invoices.Create(ctx, invoice, nil))

	exists, err := f.invoices.NumberExists(ctx, "INV-1", invoice.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = f.invoices.NumberExists(ctx, "INV-1", f.unit.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	list, err := f.invoices.List(ctx, InvoiceFilter{DispatcherID: &f.dispatcher.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
