package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/haulops-billing/internal/model"
)

// JobFilter narrows job listings. Nil fields do not filter. From and To are
// inclusive calendar dates.
type JobFilter struct {
	DispatcherID *uuid.UUID
	InvoiceID    *uuid.UUID
	Invoiced     *bool
	From         *time.Time
	To           *time.Time
}

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// editableColumns excludes the invoice link so that editing a job never races
// with an invoice claiming it.
var editableColumns = []string{
	"date_of_job",
	"dispatcher_id",
	"job_type_id",
	"driver_id",
	"unit_id",
	"start_time",
	"end_time",
	"driver_start_time",
	"driver_end_time",
	"weight",
	"loads",
	"ticket_ids",
	"image_urls",
	"job_gross_amount",
	"manual_amount",
	"driver_pay",
	"estimated_fuel",
	"estimated_revenue",
	"updated_at",
}

func (r *JobRepository) Create(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(job).Error
}

func (r *JobRepository) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	if err := r.withDetails(r.db.WithContext(ctx)).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) Update(ctx context.Context, job *model.Job) error {
	job.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Job{ID: job.ID}).
		Select(editableColumns).
		Omit(clause.Associations).
		Updates(job)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateImages rewrites only the ticket photo list.
func (r *JobRepository) UpdateImages(ctx context.Context, id uuid.UUID, imageURLs []byte) error {
	result := r.db.WithContext(ctx).
		Model(&model.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"image_urls": datatypes.JSON(imageURLs), "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes an un-invoiced job. Jobs still linked to an invoice are
// refused with ErrJobInvoiced.
func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND invoice_id IS NULL", id).Delete(&model.Job{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 {
			return nil
		}

		var count int64
		if err := tx.Model(&model.Job{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return fmt.Errorf("%w: %s", ErrJobInvoiced, id)
	})
}

func (r *JobRepository) List(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := r.withDetails(r.db.WithContext(ctx))
	if filter.DispatcherID != nil {
		query = query.Where("dispatcher_id = ?", *filter.DispatcherID)
	}
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.Invoiced != nil {
		if *filter.Invoiced {
			query = query.Where("invoice_id IS NOT NULL")
		} else {
			query = query.Where("invoice_id IS NULL")
		}
	}
	if filter.From != nil {
		query = query.Where("date_of_job >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date_of_job < ?", filter.To.AddDate(0, 0, 1))
	}

	var jobs []model.Job
	if err := query.Order("date_of_job ASC").Order("created_at ASC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListByIDs returns the jobs that exist among ids, ordered by date.
func (r *JobRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Job, error) {
	if len(ids) == 0 {
		return []model.Job{}, nil
	}
	var jobs []model.Job
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("date_of_job ASC").
		Order("created_at ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *JobRepository) withDetails(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Dispatcher").
		Preload("JobType").
		Preload("JobType.Company").
		Preload("Driver").
		Preload("Unit")
}
