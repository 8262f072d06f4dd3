package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/haulops-billing/internal/model"
)

// ReferenceRepository stores the records jobs point at: companies,
// dispatchers, drivers, units and job types.
type ReferenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) CreateCompany(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *ReferenceRepository) GetCompany(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var company model.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *ReferenceRepository) ListCompanies(ctx context.Context) ([]model.Company, error) {
	var companies []model.Company
	err := r.db.WithContext(ctx).Order("name ASC").Find(&companies).Error
	return companies, err
}

func (r *ReferenceRepository) CreateDispatcher(ctx context.Context, dispatcher *model.Dispatcher) error {
	return r.db.WithContext(ctx).Create(dispatcher).Error
}

func (r *ReferenceRepository) GetDispatcher(ctx context.Context, id uuid.UUID) (*model.Dispatcher, error) {
	var dispatcher model.Dispatcher
	if err := r.db.WithContext(ctx).First(&dispatcher, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dispatcher, nil
}

func (r *ReferenceRepository) ListDispatchers(ctx context.Context) ([]model.Dispatcher, error) {
	var dispatchers []model.Dispatcher
	err := r.db.WithContext(ctx).Order("name ASC").Find(&dispatchers).Error
	return dispatchers, err
}

func (r *ReferenceRepository) CreateDriver(ctx context.Context, driver *model.Driver) error {
	return r.db.WithContext(ctx).Create(driver).Error
}

func (r *ReferenceRepository) GetDriver(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	var driver model.Driver
	if err := r.db.WithContext(ctx).First(&driver, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *ReferenceRepository) ListDrivers(ctx context.Context) ([]model.Driver, error) {
	var drivers []model.Driver
	err := r.db.WithContext(ctx).Order("name ASC").Find(&drivers).Error
	return drivers, err
}

func (r *ReferenceRepository) CreateUnit(ctx context.Context, unit *model.Unit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *ReferenceRepository) GetUnit(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	var unit model.Unit
	if err := r.db.WithContext(ctx).First(&unit, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *ReferenceRepository) ListUnits(ctx context.Context) ([]model.Unit, error) {
	var units []model.Unit
	err := r.db.WithContext(ctx).Order("name ASC").Find(&units).Error
	return units, err
}

func (r *ReferenceRepository) CreateJobType(ctx context.Context, jobType *model.JobType) error {
	return r.db.WithContext(ctx).Omit("Company").Create(jobType).Error
}

func (r *ReferenceRepository) GetJobType(ctx context.Context, id uuid.UUID) (*model.JobType, error) {
	var jobType model.JobType
	if err := r.db.WithContext(ctx).Preload("Company").First(&jobType, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &jobType, nil
}

func (r *ReferenceRepository) ListJobTypes(ctx context.Context, companyID *uuid.UUID) ([]model.JobType, error) {
	query := r.db.WithContext(ctx).Preload("Company").Order("title ASC")
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}
	var jobTypes []model.JobType
	err := query.Find(&jobTypes).Error
	return jobTypes, err
}
