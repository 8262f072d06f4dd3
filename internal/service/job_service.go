package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/haulops-billing/internal/billing"
	"github.com/nurpe/haulops-billing/internal/model"
	"github.com/nurpe/haulops-billing/internal/repository"
)

// ImageStore keeps uploaded ticket photos and hands back the relative path
// stored on the job.
type ImageStore interface {
	Save(name string, data []byte) (string, error)
}

type JobService struct {
	jobs   *repository.JobRepository
	refs   *repository.ReferenceRepository
	images ImageStore
	calc   billing.Calculator
	log    zerolog.Logger
}

// JobInput is the full set of user-entered job fields. Weight and TicketIDs
// accept any of the loose JSON forms the billing normalizers understand.
// ManualAmount overrides the gross amount of a Fixed job.
type JobInput struct {
	DateOfJob       time.Time
	DispatcherID    uuid.UUID
	JobTypeID       uuid.UUID
	DriverID        *uuid.UUID
	UnitID          *uuid.UUID
	StartTime       string
	EndTime         string
	DriverStartTime string
	DriverEndTime   string
	Weight          []byte
	Loads           int
	TicketIDs       []byte
	ManualAmount    *decimal.Decimal
}

func NewJobService(
	jobs *repository.JobRepository,
	refs *repository.ReferenceRepository,
	images ImageStore,
	calc billing.Calculator,
	log zerolog.Logger,
) *JobService {
	return &JobService{
		jobs:   jobs,
		refs:   refs,
		images: images,
		calc:   calc,
		log:    log.With().Str("component", "jobs").Logger(),
	}
}

func (s *JobService) Create(ctx context.Context, input JobInput) (*model.Job, error) {
	job := &model.Job{ImageURLs: billing.EncodeStrings(nil)}
	if err := s.apply(ctx, job, input); err != nil {
		return nil, err
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	return s.Get(ctx, job.ID)
}

// Update replaces the user-entered fields and recomputes the figures. The
// invoice link and billing status are left alone, and a job on an invoice
// cannot move to another dispatcher.
func (s *JobService) Update(ctx context.Context, id uuid.UUID, input JobInput) (*model.Job, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "job", id)
	}
	if job.Invoiced() && input.DispatcherID != job.DispatcherID {
		return nil, fmt.Errorf("%w: job %s is invoiced and cannot change dispatcher", ErrConflict, id)
	}

	if err := s.apply(ctx, job, input); err != nil {
		return nil, err
	}
	job.UpdatedAt = time.Now()
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, notFound(err, "job", id)
	}
	return s.Get(ctx, id)
}

func (s *JobService) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "job", id)
	}
	return job, nil
}

func (s *JobService) List(ctx context.Context, filter repository.JobFilter) ([]model.Job, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("%w: from must be before or equal to to", ErrInvalidInput)
	}
	return s.jobs.List(ctx, filter)
}

// Delete refuses jobs that are still on an invoice; take them off the
// invoice first.
func (s *JobService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.jobs.Delete(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrJobInvoiced):
		return fmt.Errorf("%w: job %s is linked to an invoice", ErrConflict, id)
	default:
		return notFound(err, "job", id)
	}
}

// AttachImage stores a ticket photo and appends its path to the job.
func (s *JobService) AttachImage(ctx context.Context, id uuid.UUID, filename string, data []byte) (*model.Job, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image is empty", ErrInvalidInput)
	}
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "job", id)
	}

	path, err := s.images.Save(filename, data)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	paths := append(billing.NormalizeStrings(job.ImageURLs), path)
	if err := s.jobs.UpdateImages(ctx, id, billing.EncodeStrings(paths)); err != nil {
		return nil, notFound(err, "job", id)
	}
	s.log.Info().Str("job_id", id.String()).Str("path", path).Msg("ticket image attached")
	return s.Get(ctx, id)
}

func (s *JobService) apply(ctx context.Context, job *model.Job, input JobInput) error {
	if input.DateOfJob.IsZero() {
		return fmt.Errorf("%w: date_of_job is required", ErrInvalidInput)
	}
	if input.DispatcherID == uuid.Nil {
		return fmt.Errorf("%w: dispatcher_id is required", ErrInvalidInput)
	}
	if input.JobTypeID == uuid.Nil {
		return fmt.Errorf("%w: job_type_id is required", ErrInvalidInput)
	}
	if input.Loads < 0 {
		return fmt.Errorf("%w: loads must not be negative", ErrInvalidInput)
	}
	if input.ManualAmount != nil && input.ManualAmount.IsNegative() {
		return fmt.Errorf("%w: manual amount must not be negative", ErrInvalidInput)
	}

	if _, err := s.refs.GetDispatcher(ctx, input.DispatcherID); err != nil {
		return missingReference(err, "dispatcher", input.DispatcherID)
	}
	jobType, err := s.refs.GetJobType(ctx, input.JobTypeID)
	if err != nil {
		return missingReference(err, "job type", input.JobTypeID)
	}
	var driver *model.Driver
	if input.DriverID != nil {
		if driver, err = s.refs.GetDriver(ctx, *input.DriverID); err != nil {
			return missingReference(err, "driver", *input.DriverID)
		}
	}
	if input.UnitID != nil {
		if _, err := s.refs.GetUnit(ctx, *input.UnitID); err != nil {
			return missingReference(err, "unit", *input.UnitID)
		}
	}
	if err := checkClocks(input); err != nil {
		return err
	}

	weights := billing.NormalizeNumbers(input.Weight)

	job.DateOfJob = dateOnly(input.DateOfJob)
	job.DispatcherID = input.DispatcherID
	job.JobTypeID = input.JobTypeID
	job.DriverID = input.DriverID
	job.UnitID = input.UnitID
	job.StartTime = input.StartTime
	job.EndTime = input.EndTime
	job.DriverStartTime = input.DriverStartTime
	job.DriverEndTime = input.DriverEndTime
	job.Weight = billing.EncodeNumbers(weights)
	job.Loads = input.Loads
	job.TicketIDs = billing.EncodeStrings(billing.NormalizeStrings(input.TicketIDs))

	calcInput := billing.JobInput{
		DispatchType:    jobType.DispatchType,
		Rate:            jobType.RateOfJob,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		DriverStartTime: input.DriverStartTime,
		DriverEndTime:   input.DriverEndTime,
		Weights:         weights,
		Loads:           input.Loads,
	}
	var rates *billing.DriverRates
	if driver != nil {
		rates = &billing.DriverRates{HourlyRate: driver.HourlyRate, RevenueSharePercent: driver.RevenueSharePercent}
	}

	figures, err := s.calc.Evaluate(calcInput, rates)
	switch {
	case errors.Is(err, billing.ErrUnknownDispatchType):
		s.log.Warn().
			Str("job_type_id", jobType.ID.String()).
			Str("dispatch_type", string(jobType.DispatchType)).
			Msg("unknown dispatch type, job priced at zero")
		figures = billing.JobFigures{}
	case errors.Is(err, billing.ErrInvalidTime):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case err != nil:
		return err
	}
	if figures.LegacyDriverRate {
		s.log.Warn().
			Str("driver_id", driver.ID.String()).
			Msg("driver has no revenue share percent, using hourly rate as percent")
	}

	job.ManualAmount = false
	if input.ManualAmount != nil && jobType.DispatchType == model.DispatchFixed {
		job.ManualAmount = true
		figures.GrossAmount = input.ManualAmount.Round(2)
		figures.EstimatedRevenue = billing.EstimatedRevenue(figures.GrossAmount, figures.DriverPay)
	}

	job.JobGrossAmount = figures.GrossAmount
	job.DriverPay = figures.DriverPay
	job.EstimatedFuel = figures.EstimatedFuel
	job.EstimatedRevenue = figures.EstimatedRevenue
	return nil
}

// checkClocks rejects malformed times up front. Hourly jobs need both ends.
func checkClocks(input JobInput) error {
	fields := []struct {
		name  string
		value string
	}{
		{"start_time", input.StartTime},
		{"end_time", input.EndTime},
		{"driver_start_time", input.DriverStartTime},
		{"driver_end_time", input.DriverEndTime},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if _, err := billing.ParseClock(f.value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidInput, f.name, err)
		}
	}
	return nil
}
