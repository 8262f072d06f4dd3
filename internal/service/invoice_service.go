package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/haulops-billing/internal/billing"
	"github.com/nurpe/haulops-billing/internal/model"
	"github.com/nurpe/haulops-billing/internal/pdf"
	"github.com/nurpe/haulops-billing/internal/render"
	"github.com/nurpe/haulops-billing/internal/repository"
)

const (
	pdfContentType   = "application/pdf"
	excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type PDFGenerator interface {
	Generate(doc render.Document, files pdf.FileSource) ([]byte, error)
}

type ExcelGenerator interface {
	Generate(doc render.Document) ([]byte, error)
}

type InvoiceService struct {
	invoices *repository.InvoiceRepository
	jobs     *repository.JobRepository
	refs     *repository.ReferenceRepository
	pdf      PDFGenerator
	excel    ExcelGenerator
	files    pdf.FileSource
	company  render.Company
	calc     billing.Calculator
	log      zerolog.Logger
	now      func() time.Time
}

type CreateInvoiceInput struct {
	JobIDs []uuid.UUID
	// DispatchPercent overrides the dispatcher's commission percent.
	DispatchPercent *decimal.Decimal
	InvoiceNumber   string
	InvoiceDate     time.Time
	BilledTo        string
	BilledEmail     string
	// PeriodStart and PeriodEnd replace the job dates in the generated number.
	PeriodStart *time.Time
	PeriodEnd   *time.Time
}

// UpdateInvoiceInput changes only the fields that are set. A non-nil JobIDs
// is the complete new membership of the invoice.
type UpdateInvoiceInput struct {
	JobIDs          []uuid.UUID
	DispatchPercent *decimal.Decimal
	InvoiceNumber   *string
	InvoiceDate     *time.Time
	BilledTo        *string
	BilledEmail     *string
	Status          *string
}

// Preview is what Create would write, computed without writing anything.
type Preview struct {
	InvoiceNumber  string
	InvoiceDate    time.Time
	DispatcherID   uuid.UUID
	DispatcherName string
	BilledTo       string
	BilledEmail    string
	Totals         billing.Totals
	Jobs           []model.Job
}

type InvoiceView struct {
	Invoice *model.Invoice
	Jobs    []model.Job
}

type Document struct {
	FileName    string
	ContentType string
	Content     []byte
}

func NewInvoiceService(
	invoices *repository.InvoiceRepository,
	jobs *repository.JobRepository,
	refs *repository.ReferenceRepository,
	pdfGen PDFGenerator,
	excelGen ExcelGenerator,
	files pdf.FileSource,
	company render.Company,
	calc billing.Calculator,
	log zerolog.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoices: invoices,
		jobs:     jobs,
		refs:     refs,
		pdf:      pdfGen,
		excel:    excelGen,
		files:    files,
		company:  company,
		calc:     calc,
		log:      log.With().Str("component", "invoices").Logger(),
		now:      time.Now,
	}
}

// batch is a validated set of jobs for one invoice.
type batch struct {
	jobs       []model.Job
	dispatcher *model.Dispatcher
}

func (s *InvoiceService) Preview(ctx context.Context, input CreateInvoiceInput) (*Preview, error) {
	b, err := s.loadBatch(ctx, input.JobIDs, uuid.Nil)
	if err != nil {
		return nil, err
	}

	percent := b.dispatcher.CommissionPercent
	if input.DispatchPercent != nil {
		percent = *input.DispatchPercent
	}
	if percent.IsNegative() {
		return nil, fmt.Errorf("%w: dispatch_percent must not be negative", ErrInvalidInput)
	}

	number := strings.TrimSpace(input.InvoiceNumber)
	if number != "" {
		exists, err := s.invoices.NumberExists(ctx, number, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: invoice number %s is taken", ErrConflict, number)
		}
	} else {
		if number, err = s.defaultNumber(ctx, b, input.PeriodStart, input.PeriodEnd); err != nil {
			return nil, err
		}
	}

	invoiceDate := dateOnly(s.now())
	if !input.InvoiceDate.IsZero() {
		invoiceDate = dateOnly(input.InvoiceDate)
	}

	return &Preview{
		InvoiceNumber:  number,
		InvoiceDate:    invoiceDate,
		DispatcherID:   b.dispatcher.ID,
		DispatcherName: b.dispatcher.Name,
		BilledTo:       defaultString(input.BilledTo, b.dispatcher.Name),
		BilledEmail:    defaultString(input.BilledEmail, b.dispatcher.Email),
		Totals:         billing.ComputeTotals(grossAmounts(b.jobs), percent),
		Jobs:           b.jobs,
	}, nil
}

// Create invoices the jobs. Every job is claimed in the same transaction as
// the invoice, so a job taken by a concurrent request fails the whole call.
func (s *InvoiceService) Create(ctx context.Context, input CreateInvoiceInput) (*InvoiceView, error) {
	preview, err := s.Preview(ctx, input)
	if err != nil {
		return nil, err
	}

	invoice := &model.Invoice{
		InvoiceNumber:   preview.InvoiceNumber,
		InvoiceDate:     preview.InvoiceDate,
		DispatcherID:    preview.DispatcherID,
		Status:          model.StatusRaised,
		SubTotal:        preview.Totals.SubTotal,
		DispatchPercent: preview.Totals.Percent,
		Commission:      preview.Totals.Commission,
		HST:             preview.Totals.HST,
		Total:           preview.Totals.Total,
		BilledTo:        preview.BilledTo,
		BilledEmail:     preview.BilledEmail,
	}
	if err := s.invoices.Create(ctx, invoice, preview.Jobs); err != nil {
		if errors.Is(err, repository.ErrJobClaimed) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil, err
	}

	s.log.Info().
		Str("invoice_id", invoice.ID.String()).
		Str("invoice_number", invoice.InvoiceNumber).
		Int("jobs", len(preview.Jobs)).
		Str("total", invoice.Total.StringFixed(2)).
		Msg("invoice created")
	return s.Get(ctx, invoice.ID)
}

func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*InvoiceView, error) {
	invoice, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "invoice", id)
	}

	var change repository.MembershipChange
	if input.JobIDs != nil {
		if change, err = s.membershipChange(ctx, invoice, input.JobIDs); err != nil {
			return nil, err
		}
	}

	if input.DispatchPercent != nil {
		if input.DispatchPercent.IsNegative() {
			return nil, fmt.Errorf("%w: dispatch_percent must not be negative", ErrInvalidInput)
		}
		invoice.DispatchPercent = *input.DispatchPercent
	}
	if input.InvoiceNumber != nil {
		number := strings.TrimSpace(*input.InvoiceNumber)
		if number == "" {
			return nil, fmt.Errorf("%w: invoice_number must not be empty", ErrInvalidInput)
		}
		exists, err := s.invoices.NumberExists(ctx, number, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: invoice number %s is taken", ErrConflict, number)
		}
		invoice.InvoiceNumber = number
	}
	if input.InvoiceDate != nil {
		invoice.InvoiceDate = dateOnly(*input.InvoiceDate)
	}
	if input.BilledTo != nil {
		invoice.BilledTo = strings.TrimSpace(*input.BilledTo)
	}
	if input.BilledEmail != nil {
		invoice.BilledEmail = strings.TrimSpace(*input.BilledEmail)
	}
	if input.Status != nil {
		status, ok := model.ParseInvoiceStatus(*input.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *input.Status)
		}
		invoice.Status = status
		change.JobStatus = &status
	}

	if err := s.invoices.Update(ctx, invoice, change); err != nil {
		if errors.Is(err, repository.ErrJobClaimed) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil, err
	}

	s.log.Info().
		Str("invoice_id", id.String()).
		Int("added", len(change.Add)).
		Int("removed", len(change.Remove)).
		Str("total", invoice.Total.StringFixed(2)).
		Msg("invoice updated")
	return s.Get(ctx, id)
}

// Delete returns every job of the invoice to Pending before removing it.
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.invoices.Delete(ctx, id)
	switch {
	case err == nil:
		s.log.Info().Str("invoice_id", id.String()).Msg("invoice deleted")
		return nil
	case errors.Is(err, repository.ErrLinesRemain):
		s.log.Error().Err(err).Str("invoice_id", id.String()).Msg("invoice deletion aborted")
		return fmt.Errorf("%w: %v", ErrInconsistentState, err)
	default:
		return notFound(err, "invoice", id)
	}
}

func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*InvoiceView, error) {
	invoice, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "invoice", id)
	}
	jobs, err := s.jobs.List(ctx, repository.JobFilter{InvoiceID: &id})
	if err != nil {
		return nil, err
	}
	return &InvoiceView{Invoice: invoice, Jobs: jobs}, nil
}

func (s *InvoiceService) List(ctx context.Context, filter repository.InvoiceFilter) ([]model.Invoice, error) {
	return s.invoices.List(ctx, filter)
}

func (s *InvoiceService) RenderPDF(ctx context.Context, id uuid.UUID) (*Document, error) {
	view, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(s.prepare(view), s.files)
	if err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", id, err)
	}
	return &Document{
		FileName:    documentName(view.Invoice, "pdf"),
		ContentType: pdfContentType,
		Content:     content,
	}, nil
}

func (s *InvoiceService) ExportExcel(ctx context.Context, id uuid.UUID) (*Document, error) {
	view, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(s.prepare(view))
	if err != nil {
		return nil, fmt.Errorf("export invoice %s: %w", id, err)
	}
	return &Document{
		FileName:    documentName(view.Invoice, "xlsx"),
		ContentType: excelContentType,
		Content:     content,
	}, nil
}

func (s *InvoiceService) prepare(view *InvoiceView) render.Document {
	return render.Prepare(s.company, render.InvoiceData{
		Invoice:         *view.Invoice,
		Jobs:            view.Jobs,
		RoundingMinutes: s.calc.RoundingMinutes,
	})
}

// loadBatch checks the invoicing preconditions: at least one job, every job
// exists, none is on another invoice than editing, and all share one named
// dispatcher.
func (s *InvoiceService) loadBatch(ctx context.Context, ids []uuid.UUID, editing uuid.UUID) (*batch, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one job is required", ErrInvalidInput)
	}

	jobs, err := s.jobs.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(jobs) != len(ids) {
		found := make(map[uuid.UUID]struct{}, len(jobs))
		for _, job := range jobs {
			found[job.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				return nil, fmt.Errorf("%w: job %s does not exist", ErrInvalidInput, id)
			}
		}
	}

	dispatchers := make(map[uuid.UUID]struct{})
	for _, job := range jobs {
		if job.Invoiced() && *job.InvoiceID != editing {
			return nil, fmt.Errorf("%w: job %s is already invoiced", ErrConflict, job.ID)
		}
		dispatchers[job.DispatcherID] = struct{}{}
	}
	if len(dispatchers) != 1 {
		return nil, fmt.Errorf("%w: jobs belong to %d dispatchers, expected one", ErrInvalidInput, len(dispatchers))
	}

	dispatcherID := jobs[0].DispatcherID
	dispatcher, err := s.refs.GetDispatcher(ctx, dispatcherID)
	if err != nil {
		return nil, missingReference(err, "dispatcher", dispatcherID)
	}
	if strings.TrimSpace(dispatcher.Name) == "" {
		return nil, fmt.Errorf("%w: dispatcher %s has no name", ErrInvalidInput, dispatcherID)
	}
	return &batch{jobs: jobs, dispatcher: dispatcher}, nil
}

func (s *InvoiceService) membershipChange(ctx context.Context, invoice *model.Invoice, ids []uuid.UUID) (repository.MembershipChange, error) {
	b, err := s.loadBatch(ctx, ids, invoice.ID)
	if err != nil {
		return repository.MembershipChange{}, err
	}
	if b.dispatcher.ID != invoice.DispatcherID {
		return repository.MembershipChange{}, fmt.Errorf("%w: jobs belong to dispatcher %s, invoice to %s",
			ErrInvalidInput, b.dispatcher.ID, invoice.DispatcherID)
	}

	wanted := make(map[uuid.UUID]struct{}, len(b.jobs))
	var change repository.MembershipChange
	for _, job := range b.jobs {
		wanted[job.ID] = struct{}{}
		if !job.Invoiced() {
			change.Add = append(change.Add, job)
		}
	}
	for _, line := range invoice.Lines {
		if _, ok := wanted[line.JobID]; !ok {
			change.Remove = append(change.Remove, line.JobID)
		}
	}
	return change, nil
}

// defaultNumber generates the invoice number and appends -2, -3, ... while
// the number is already taken.
func (s *InvoiceService) defaultNumber(ctx context.Context, b *batch, periodStart, periodEnd *time.Time) (string, error) {
	dates := make([]time.Time, 0, len(b.jobs))
	units := make([]string, 0, len(b.jobs))
	for _, job := range b.jobs {
		dates = append(dates, dateOnly(job.DateOfJob))
		if job.Unit != nil {
			units = append(units, job.Unit.Name)
		}
	}
	first, last := billing.DateSpan(dates)
	if periodStart != nil {
		first = dateOnly(*periodStart)
	}
	if periodEnd != nil {
		last = dateOnly(*periodEnd)
	}

	base := billing.InvoiceNumber(billing.NumberInput{
		DispatcherName: b.dispatcher.Name,
		UnitNames:      units,
		FirstDate:      first,
		LastDate:       last,
	})
	candidate := base
	for n := 2; ; n++ {
		exists, err := s.invoices.NumberExists(ctx, candidate, uuid.Nil)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func documentName(invoice *model.Invoice, ext string) string {
	if number := strings.TrimSpace(invoice.InvoiceNumber); number != "" {
		return number + "." + ext
	}
	return "invoice-" + invoice.ID.String() + "." + ext
}

func grossAmounts(jobs []model.Job) []decimal.Decimal {
	amounts := make([]decimal.Decimal, 0, len(jobs))
	for _, job := range jobs {
		amounts = append(amounts, job.JobGrossAmount)
	}
	return amounts
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	result := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func defaultString(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
