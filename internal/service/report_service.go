package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/haulops-billing/internal/model"
	"github.com/nurpe/haulops-billing/internal/repository"
)

type ReportExcelGenerator interface {
	GenerateReport(report model.JobReport) ([]byte, error)
}

type ReportService struct {
	repo  *repository.ReportRepository
	excel ReportExcelGenerator
}

type ReportInput struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Invoiced    *bool
	Statuses    []model.InvoiceStatus
}

func NewReportService(repo *repository.ReportRepository, excel ReportExcelGenerator) *ReportService {
	return &ReportService{repo: repo, excel: excel}
}

// Summary totals job figures per dispatcher over an inclusive date range.
// Every dispatcher appears, with zeroes when it had no matching jobs.
func (s *ReportService) Summary(ctx context.Context, input ReportInput) (*model.JobReport, error) {
	if input.PeriodStart.IsZero() || input.PeriodEnd.IsZero() {
		return nil, fmt.Errorf("%w: period dates are required", ErrInvalidInput)
	}

	periodStart := dateOnly(input.PeriodStart)
	periodEnd := dateOnly(input.PeriodEnd)
	if periodStart.After(periodEnd) {
		return nil, fmt.Errorf("%w: period_start must be before or equal to period_end", ErrInvalidInput)
	}
	statuses := make([]model.InvoiceStatus, 0, len(input.Statuses))
	for _, raw := range input.Statuses {
		status, ok := model.ParseInvoiceStatus(string(raw))
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, raw)
		}
		statuses = append(statuses, status)
	}

	endExclusive := periodEnd.AddDate(0, 0, 1)

	dispatchers, err := s.repo.ListDispatchers(ctx)
	if err != nil {
		return nil, err
	}
	sums, err := s.repo.SummaryByDispatcher(ctx, periodStart, endExclusive, input.Invoiced, statuses)
	if err != nil {
		return nil, err
	}
	rows := mergeSummaries(dispatchers, sums)

	report := &model.JobReport{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Invoiced:    input.Invoiced,
		Statuses:    statuses,
		Rows:        rows,
		Total:       model.DispatcherSummary{DispatcherName: "Total"},
	}
	for _, row := range rows {
		report.TotalJobs += row.JobCount
		report.Total.JobCount += row.JobCount
		report.Total.GrossAmount = report.Total.GrossAmount.Add(row.GrossAmount)
		report.Total.DriverPay = report.Total.DriverPay.Add(row.DriverPay)
		report.Total.EstimatedFuel = report.Total.EstimatedFuel.Add(row.EstimatedFuel)
		report.Total.EstimatedRevenue = report.Total.EstimatedRevenue.Add(row.EstimatedRevenue)
	}
	return report, nil
}

func (s *ReportService) Export(ctx context.Context, input ReportInput) (*Document, error) {
	report, err := s.Summary(ctx, input)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.GenerateReport(*report)
	if err != nil {
		return nil, err
	}
	return &Document{
		FileName:    reportFileName(*report),
		ContentType: excelContentType,
		Content:     content,
	}, nil
}

func reportFileName(report model.JobReport) string {
	period := fmt.Sprintf("%s-%s", report.PeriodStart.Format("20060102"), report.PeriodEnd.Format("20060102"))
	return fmt.Sprintf("job-summary-%s.xlsx", period)
}

// mergeSummaries keeps the dispatcher order of base and fills in sums. Sums
// for dispatchers missing from base are appended.
func mergeSummaries(base []model.DispatcherSummary, sums []model.DispatcherSummary) []model.DispatcherSummary {
	result := make([]model.DispatcherSummary, 0, len(base)+len(sums))
	index := make(map[uuid.UUID]int, len(base))

	for _, row := range base {
		result = append(result, row)
		index[row.DispatcherID] = len(result) - 1
	}

	for _, row := range sums {
		row = roundSummary(row)
		if pos, ok := index[row.DispatcherID]; ok {
			name := result[pos].DispatcherName
			result[pos] = row
			if name != "" {
				result[pos].DispatcherName = name
			}
			continue
		}
		result = append(result, row)
		index[row.DispatcherID] = len(result) - 1
	}

	return result
}

// roundSummary drops float noise some drivers add to SUM over numeric columns.
func roundSummary(row model.DispatcherSummary) model.DispatcherSummary {
	row.GrossAmount = row.GrossAmount.Round(2)
	row.DriverPay = row.DriverPay.Round(2)
	row.EstimatedFuel = row.EstimatedFuel.Round(2)
	row.EstimatedRevenue = row.EstimatedRevenue.Round(2)
	return row
}
