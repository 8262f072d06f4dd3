package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/haulops-billing/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ListDispatchers returns every dispatcher as an empty summary row so that a
// report also shows dispatchers without work in the period.
func (r *ReportRepository) ListDispatchers(ctx context.Context) ([]model.DispatcherSummary, error) {
	var rows []model.DispatcherSummary
	if err := r.db.WithContext(ctx).Raw(`
        SELECT id AS dispatcher_id, name AS dispatcher_name
        FROM dispatchers
        ORDER BY name ASC
    `).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SummaryByDispatcher sums job figures per dispatcher for jobs dated in
// [from, to). invoiced narrows to linked or unlinked jobs when set.
func (r *ReportRepository) SummaryByDispatcher(
	ctx context.Context,
	from, to time.Time,
	invoiced *bool,
	statuses []model.InvoiceStatus,
) ([]model.DispatcherSummary, error) {
	baseQuery := `
        SELECT
            j.dispatcher_id AS dispatcher_id,
            COALESCE(d.name, 'Unknown') AS dispatcher_name,
            COUNT(*) AS job_count,
            COALESCE(SUM(j.job_gross_amount), 0) AS gross_amount,
            COALESCE(SUM(j.driver_pay), 0) AS driver_pay,
            COALESCE(SUM(j.estimated_fuel), 0) AS estimated_fuel,
            COALESCE(SUM(j.estimated_revenue), 0) AS estimated_revenue
        FROM jobs j
        LEFT JOIN dispatchers d ON d.id = j.dispatcher_id
        WHERE j.date_of_job >= ?
            AND j.date_of_job < ?
    `
	args := []interface{}{from, to}
	if invoiced != nil {
		if *invoiced {
			baseQuery += " AND j.invoice_id IS NOT NULL"
		} else {
			baseQuery += " AND j.invoice_id IS NULL"
		}
	}
	baseQuery, args = appendStatusFilter(baseQuery, args, statuses)
	baseQuery += " GROUP BY j.dispatcher_id, d.name ORDER BY dispatcher_name ASC"

	var rows []model.DispatcherSummary
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func appendStatusFilter(baseQuery string, args []interface{}, statuses []model.InvoiceStatus) (string, []interface{}) {
	if len(statuses) == 0 {
		return baseQuery, args
	}

	placeholders := make([]string, len(statuses))
	for i := range statuses {
		placeholders[i] = "?"
	}
	baseQuery += fmt.Sprintf(" AND j.invoice_status IN (%s)", strings.Join(placeholders, ","))
	for _, status := range statuses {
		args = append(args, status)
	}
	return baseQuery, args
}
