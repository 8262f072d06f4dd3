package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/haulops-billing/internal/model"
	"github.com/nurpe/haulops-billing/internal/repository"
)

// ReferenceService manages the lookup records jobs point at.
type ReferenceService struct {
	repo *repository.ReferenceRepository
}

func NewReferenceService(repo *repository.ReferenceRepository) *ReferenceService {
	return &ReferenceService{repo: repo}
}

func (s *ReferenceService) CreateCompany(ctx context.Context, company *model.Company) error {
	if err := requireName(&company.Name, "company"); err != nil {
		return err
	}
	return s.repo.CreateCompany(ctx, company)
}

func (s *ReferenceService) ListCompanies(ctx context.Context) ([]model.Company, error) {
	return s.repo.ListCompanies(ctx)
}

func (s *ReferenceService) CreateDispatcher(ctx context.Context, dispatcher *model.Dispatcher) error {
	if err := requireName(&dispatcher.Name, "dispatcher"); err != nil {
		return err
	}
	if err := requireNonNegative(dispatcher.CommissionPercent, "commission_percent"); err != nil {
		return err
	}
	return s.repo.CreateDispatcher(ctx, dispatcher)
}

func (s *ReferenceService) GetDispatcher(ctx context.Context, id uuid.UUID) (*model.Dispatcher, error) {
	dispatcher, err := s.repo.GetDispatcher(ctx, id)
	if err != nil {
		return nil, notFound(err, "dispatcher", id)
	}
	return dispatcher, nil
}

func (s *ReferenceService) ListDispatchers(ctx context.Context) ([]model.Dispatcher, error) {
	return s.repo.ListDispatchers(ctx)
}

func (s *ReferenceService) CreateDriver(ctx context.Context, driver *model.Driver) error {
	if err := requireName(&driver.Name, "driver"); err != nil {
		return err
	}
	if err := requireNonNegative(driver.HourlyRate, "hourly_rate"); err != nil {
		return err
	}
	if driver.RevenueSharePercent != nil {
		if err := requireNonNegative(*driver.RevenueSharePercent, "revenue_share_percent"); err != nil {
			return err
		}
	}
	return s.repo.CreateDriver(ctx, driver)
}

func (s *ReferenceService) ListDrivers(ctx context.Context) ([]model.Driver, error) {
	return s.repo.ListDrivers(ctx)
}

func (s *ReferenceService) CreateUnit(ctx context.Context, unit *model.Unit) error {
	if err := requireName(&unit.Name, "unit"); err != nil {
		return err
	}
	return s.repo.CreateUnit(ctx, unit)
}

func (s *ReferenceService) ListUnits(ctx context.Context) ([]model.Unit, error) {
	return s.repo.ListUnits(ctx)
}

// CreateJobType stores the dispatch type in its canonical spelling. The
// company must exist.
func (s *ReferenceService) CreateJobType(ctx context.Context, jobType *model.JobType) error {
	if err := requireName(&jobType.Title, "job type"); err != nil {
		return err
	}
	dispatch, ok := model.ParseDispatchType(string(jobType.DispatchType))
	if !ok {
		return fmt.Errorf("%w: unknown dispatch_type %q", ErrInvalidInput, jobType.DispatchType)
	}
	jobType.DispatchType = dispatch
	if err := requireNonNegative(jobType.RateOfJob, "rate_of_job"); err != nil {
		return err
	}
	if _, err := s.repo.GetCompany(ctx, jobType.CompanyID); err != nil {
		return missingReference(err, "company", jobType.CompanyID)
	}
	return s.repo.CreateJobType(ctx, jobType)
}

func (s *ReferenceService) ListJobTypes(ctx context.Context, companyID *uuid.UUID) ([]model.JobType, error) {
	return s.repo.ListJobTypes(ctx, companyID)
}

func requireName(name *string, what string) error {
	*name = strings.TrimSpace(*name)
	if *name == "" {
		return fmt.Errorf("%w: %s name is required", ErrInvalidInput, what)
	}
	return nil
}

func requireNonNegative(value decimal.Decimal, field string) error {
	if value.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, field)
	}
	return nil
}
