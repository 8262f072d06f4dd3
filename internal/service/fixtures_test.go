package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/haulops-billing/internal/billing"
	"github.com/nurpe/haulops-billing/internal/db/dbtest"
	"github.com/nurpe/haulops-billing/internal/excel"
	"github.com/nurpe/haulops-billing/internal/model"
	"github.com/nurpe/haulops-billing/internal/pdf"
	"github.com/nurpe/haulops-billing/internal/render"
	"github.com/nurpe/haulops-billing/internal/repository"
	"github.com/nurpe/haulops-billing/internal/storage"
)

type env struct {
	refs     *ReferenceService
	refRepo  *repository.ReferenceRepository
	jobs     *JobService
	invoices *InvoiceService
	reports  *ReportService
	logs     *bytes.Buffer

	company    model.Company
	dispatcher model.Dispatcher
	unit       model.Unit
	fixed      model.JobType
	hourly     model.JobType
	tonnage    model.JobType
}

func newEnv(t *testing.T) *env {
	t.Helper()
	database := dbtest.Open(t)
	logs := &bytes.Buffer{}
	log := zerolog.New(logs)

	refRepo := repository.NewReferenceRepository(database)
	jobRepo := repository.NewJobRepository(database)
	invoiceRepo := repository.NewInvoiceRepository(database)
	files := storage.NewFileStore(afero.NewMemMapFs(), "/uploads")
	calc := billing.DefaultCalculator()

	e := &env{
		refs:    NewReferenceService(refRepo),
		refRepo: refRepo,
		jobs:    NewJobService(jobRepo, refRepo, files, calc, log),
		invoices: NewInvoiceService(
			invoiceRepo, jobRepo, refRepo,
			pdf.NewGenerator(log), excel.NewGenerator(), files,
			render.Company{Name: "Haul Co", TaxNumber: "123456789RT0001"},
			calc, log,
		),
		reports: NewReportService(repository.NewReportRepository(database), excel.NewGenerator()),
		logs:    logs,
	}
	e.invoices.now = func() time.Time { return day(2024, time.March, 31) }

	ctx := context.Background()
	e.company = model.Company{Name: "Granite Aggregates"}
	require.NoError(t, e.refs.CreateCompany(ctx, &e.company))
	e.dispatcher = model.Dispatcher{Name: "Acme Corp", Email: "ops@acme.test", CommissionPercent: decimal.NewFromInt(10)}
	require.NoError(t, e.refs.CreateDispatcher(ctx, &e.dispatcher))
	e.unit = model.Unit{Name: "Truck 7"}
	require.NoError(t, e.refs.CreateUnit(ctx, &e.unit))

	e.fixed = e.jobType(t, "fixed", "100")
	e.hourly = e.jobType(t, "Hourly", "60")
	e.tonnage = e.jobType(t, "tonnage", "12.5")
	return e
}

func (e *env) jobType(t *testing.T, dispatch, rate string) model.JobType {
	t.Helper()
	jt := model.JobType{
		Title:         dispatch + " run",
		CompanyID:     e.company.ID,
		DispatchType:  model.DispatchType(dispatch),
		RateOfJob:     decimal.RequireFromString(rate),
		StartLocation: "Pit 3",
		EndLocation:   "Site B",
	}
	require.NoError(t, e.refs.CreateJobType(context.Background(), &jt))
	return jt
}

func (e *env) dispatcherNamed(t *testing.T, name string) model.Dispatcher {
	t.Helper()
	d := model.Dispatcher{Name: name, CommissionPercent: decimal.NewFromInt(5)}
	require.NoError(t, e.refs.CreateDispatcher(context.Background(), &d))
	return d
}

// fixedJob creates a Fixed job whose gross amount is the given manual amount.
func (e *env) fixedJob(t *testing.T, date time.Time, amount string) *model.Job {
	t.Helper()
	return e.fixedJobFor(t, e.dispatcher.ID, date, amount)
}

func (e *env) fixedJobFor(t *testing.T, dispatcherID uuid.UUID, date time.Time, amount string) *model.Job {
	t.Helper()
	manual := decimal.RequireFromString(amount)
	unitID := e.unit.ID
	job, err := e.jobs.Create(context.Background(), JobInput{
		DateOfJob:    date,
		DispatcherID: dispatcherID,
		JobTypeID:    e.fixed.ID,
		UnitID:       &unitID,
		TicketIDs:    []byte(`"T-100"`),
		ManualAmount: &manual,
	})
	require.NoError(t, err)
	return job
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func jobIDs(jobs ...*model.Job) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	return ids
}
