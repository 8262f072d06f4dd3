package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/haulops-billing/internal/billing"
	"github.com/nurpe/haulops-billing/internal/model"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

type InvoiceFilter struct {
	DispatcherID *uuid.UUID
	Status       *model.InvoiceStatus
}

// MembershipChange describes an edit of the jobs on an invoice. JobStatus is
// set only when the caller changed the billing status explicitly; it is then
// applied to every job left on the invoice.
type MembershipChange struct {
	Add       []model.Job
	Remove    []uuid.UUID
	JobStatus *model.InvoiceStatus
}

// Create writes the invoice, one line per job and claims every job in a single
// transaction. A job claimed by someone else in the meantime aborts the whole
// write with ErrJobClaimed.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *model.Invoice, jobs []model.Job) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(invoice).Error; err != nil {
			return err
		}

		status := model.StatusInvoiced
		lines, err := attachJobs(tx, invoice.ID, jobs, &status)
		if err != nil {
			return err
		}
		invoice.Lines = lines
		return nil
	})
}

// Update applies a membership change, recomputes the totals from the stored
// lines and saves the invoice, all in one transaction.
func (r *InvoiceRepository) Update(ctx context.Context, invoice *model.Invoice, change MembershipChange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(change.Remove) > 0 {
			if err := releaseJobs(tx, "invoice_id = ? AND id IN ?", invoice.ID, change.Remove); err != nil {
				return err
			}
			if err := tx.Where("invoice_id = ? AND job_id IN ?", invoice.ID, change.Remove).
				Delete(&model.InvoiceLine{}).Error; err != nil {
				return err
			}
		}

		if _, err := attachJobs(tx, invoice.ID, change.Add, nil); err != nil {
			return err
		}

		if change.JobStatus != nil {
			if err := tx.Model(&model.Job{}).
				Where("invoice_id = ?", invoice.ID).
				Updates(map[string]interface{}{"invoice_status": *change.JobStatus, "updated_at": time.Now()}).Error; err != nil {
				return err
			}
		}

		var lines []model.InvoiceLine
		if err := tx.Where("invoice_id = ?", invoice.ID).Order("created_at ASC").Find(&lines).Error; err != nil {
			return err
		}
		totals := billing.ComputeTotals(lineAmounts(lines), invoice.DispatchPercent)
		invoice.SubTotal = totals.SubTotal
		invoice.Commission = totals.Commission
		invoice.HST = totals.HST
		invoice.Total = totals.Total
		invoice.Lines = lines

		return tx.Omit(clause.Associations).Save(invoice).Error
	})
}

// Delete releases every job of the invoice back to Pending, removes its lines
// and finally the invoice itself. Lines left behind abort the deletion.
func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice model.Invoice
		if err := tx.Select("id").First(&invoice, "id = ?", id).Error; err != nil {
			return err
		}

		if err := releaseJobs(tx, "invoice_id = ?", id); err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&model.InvoiceLine{}).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&model.InvoiceLine{}).Where("invoice_id = ?", id).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining > 0 {
			return fmt.Errorf("%w: %d lines left on invoice %s", ErrLinesRemain, remaining, id)
		}

		return tx.Delete(&model.Invoice{}, "id = ?", id).Error
	})
}

func (r *InvoiceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Dispatcher").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) List(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, error) {
	query := r.db.WithContext(ctx).Preload("Dispatcher")
	if filter.DispatcherID != nil {
		query = query.Where("dispatcher_id = ?", *filter.DispatcherID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	var invoices []model.Invoice
	if err := query.Order("invoice_date DESC").Order("invoice_number ASC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// NumberExists reports whether another invoice already uses number.
func (r *InvoiceRepository) NumberExists(ctx context.Context, number string, exclude uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("invoice_number = ? AND id <> ?", number, exclude).
		Count(&count).Error
	return count > 0, err
}

func (r *InvoiceRepository) CountLines(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.InvoiceLine{}).Where("invoice_id = ?", invoiceID).Count(&count).Error
	return count, err
}

// attachJobs claims each job with a conditional update and writes its line.
// A nil status leaves the jobs' billing status untouched.
func attachJobs(tx *gorm.DB, invoiceID uuid.UUID, jobs []model.Job, status *model.InvoiceStatus) ([]model.InvoiceLine, error) {
	lines := make([]model.InvoiceLine, 0, len(jobs))
	for _, job := range jobs {
		updates := map[string]interface{}{"invoice_id": invoiceID, "updated_at": time.Now()}
		if status != nil {
			updates["invoice_status"] = *status
		}
		result := tx.Model(&model.Job{}).
			Where("id = ? AND invoice_id IS NULL", job.ID).
			Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected != 1 {
			return nil, fmt.Errorf("%w: %s", ErrJobClaimed, job.ID)
		}

		line := model.InvoiceLine{
			InvoiceID:  invoiceID,
			JobID:      job.ID,
			LineAmount: job.JobGrossAmount,
		}
		if err := tx.Create(&line).Error; err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func releaseJobs(tx *gorm.DB, query string, args ...interface{}) error {
	return tx.Model(&model.Job{}).
		Where(query, args...).
		Updates(map[string]interface{}{
			"invoice_id":     nil,
			"invoice_status": model.StatusPending,
			"updated_at":     time.Now(),
		}).Error
}

func lineAmounts(lines []model.InvoiceLine) []decimal.Decimal {
	amounts := make([]decimal.Decimal, 0, len(lines))
	for _, line := range lines {
		amounts = append(amounts, line.LineAmount)
	}
	return amounts
}
