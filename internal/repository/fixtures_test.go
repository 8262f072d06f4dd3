package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nurpe/haulops-billing/internal/db/dbtest"
	"github.com/nurpe/haulops-billing/internal/model"
)

type fixture struct {
	db         *gorm.DB
	refs       *ReferenceRepository
	jobs       *JobRepository
	invoices   *InvoiceRepository
	dispatcher model.Dispatcher
	jobType    model.JobType
	unit       model.Unit
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := dbtest.Open(t)
	f := &fixture{
		db:       database,
		refs:     NewReferenceRepository(database),
		jobs:     NewJobRepository(database),
		invoices: NewInvoiceRepository(database),
	}
	ctx := context.Background()

	company := model.Company{Name: "Granite Aggregates"}
	require.NoError(t, f.refs.CreateCompany(ctx, &company))

	f.dispatcher = model.Dispatcher{Name: "Acme Corp", CommissionPercent: decimal.NewFromInt(10)}
	require.NoError(t, f.refs.CreateDispatcher(ctx, &f.dispatcher))

	f.unit = model.Unit{Name: "Truck 7"}
	require.NoError(t, f.refs.CreateUnit(ctx, &f.unit))

	f.jobType = model.JobType{
		Title:         "Gravel run",
		CompanyID:     company.ID,
		DispatchType:  model.DispatchFixed,
		RateOfJob:     decimal.NewFromInt(100),
		StartLocation: "Pit 3",
		EndLocation:   "Site B",
	}
	require.NoError(t, f.refs.CreateJobType(ctx, &f.jobType))
	return f
}

func (f *fixture) job(t *testing.T, date time.Time, gross string) model.Job {
	t.Helper()
	unitID := f.unit.ID
	job := model.Job{
		DateOfJob:      date,
		DispatcherID:   f.dispatcher.ID,
		JobTypeID:      f.jobType.ID,
		UnitID:         &unitID,
		JobGrossAmount: decimal.RequireFromString(gross),
		Weight:         []byte(`[]`),
		TicketIDs:      []byte(`["T-1"]`),
		ImageURLs:      []byte(`[]`),
	}
	require.NoError(t, f.jobs.Create(context.Background(), &job))
	return job
}

func (f *fixture) invoice(number string) *model.Invoice {
	return &model.Invoice{
		InvoiceNumber:   number,
		InvoiceDate:     date(2024, time.March, 31),
		DispatcherID:    f.dispatcher.ID,
		DispatchPercent: decimal.NewFromInt(10),
		BilledTo:        f.dispatcher.Name,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ids(jobs ...model.Job) []uuid.UUID {
	result := make([]uuid.UUID, 0, len(jobs))
	for _, j := range jobs {
		result = append(result, j.ID)
	}
	return result
}
