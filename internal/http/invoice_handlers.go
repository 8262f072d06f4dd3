package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/haulops-billing/internal/model"
	"github.com/nurpe/haulops-billing/internal/repository"
	"github.com/nurpe/haulops-billing/internal/service"
)

type createInvoiceRequest struct {
	JobIDs          []string         `json:"job_ids"`
	DispatchPercent *decimal.Decimal `json:"dispatch_percent"`
	InvoiceNumber   string           `json:"invoice_number"`
	InvoiceDate     *string          `json:"invoice_date"`
	BilledTo        string           `json:"billed_to"`
	BilledEmail     string           `json:"billed_email"`
	PeriodStart     *string          `json:"period_start"`
	PeriodEnd       *string          `json:"period_end"`
}

// updateInvoiceRequest leaves absent fields unchanged. job_ids, when given,
// is the full new list of jobs.
type updateInvoiceRequest struct {
	JobIDs          []string         `json:"job_ids"`
	DispatchPercent *decimal.Decimal `json:"dispatch_percent"`
	InvoiceNumber   *string          `json:"invoice_number"`
	InvoiceDate     *string          `json:"invoice_date"`
	BilledTo        *string          `json:"billed_to"`
	BilledEmail     *string          `json:"billed_email"`
	Status          *string          `json:"status"`
}

type totalsResponse struct {
	SubTotal        decimal.Decimal `json:"sub_total"`
	DispatchPercent decimal.Decimal `json:"dispatch_percent"`
	Commission      decimal.Decimal `json:"commission"`
	HST             decimal.Decimal `json:"hst"`
	Total           decimal.Decimal `json:"total"`
}

type previewResponse struct {
	InvoiceNumber  string      `json:"invoice_number"`
	InvoiceDate    string      `json:"invoice_date"`
	DispatcherID   uuid.UUID   `json:"dispatcher_id"`
	DispatcherName string      `json:"dispatcher_name"`
	BilledTo       string      `json:"billed_to"`
	BilledEmail    string      `json:"billed_email"`
	JobIDs         []uuid.UUID `json:"job_ids"`
	totalsResponse
}

type invoiceLineResponse struct {
	JobID      uuid.UUID       `json:"job_id"`
	LineAmount decimal.Decimal `json:"line_amount"`
}

type invoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	InvoiceNumber  string                `json:"invoice_number"`
	InvoiceDate    string                `json:"invoice_date"`
	DispatcherID   uuid.UUID             `json:"dispatcher_id"`
	DispatcherName string                `json:"dispatcher_name,omitempty"`
	Status         model.InvoiceStatus   `json:"status"`
	BilledTo       string                `json:"billed_to"`
	BilledEmail    string                `json:"billed_email"`
	Lines          []invoiceLineResponse `json:"lines,omitempty"`
	Jobs           []jobResponse         `json:"jobs,omitempty"`
	totalsResponse
}

func toInvoice(invoice model.Invoice, jobs []model.Job) invoiceResponse {
	resp := invoiceResponse{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		InvoiceDate:   formatDate(invoice.InvoiceDate),
		DispatcherID:  invoice.DispatcherID,
		Status:        invoice.Status,
		BilledTo:      invoice.BilledTo,
		BilledEmail:   invoice.BilledEmail,
		totalsResponse: totalsResponse{
			SubTotal:        invoice.SubTotal,
			DispatchPercent: invoice.DispatchPercent,
			Commission:      invoice.Commission,
			HST:             invoice.HST,
			Total:           invoice.Total,
		},
	}
	if invoice.Dispatcher != nil {
		resp.DispatcherName = invoice.Dispatcher.Name
	}
	for _, line := range invoice.Lines {
		resp.Lines = append(resp.Lines, invoiceLineResponse{JobID: line.JobID, LineAmount: line.LineAmount})
	}
	for _, job := range jobs {
		resp.Jobs = append(resp.Jobs, toJob(job))
	}
	return resp
}

func (req createInvoiceRequest) toInput() (service.CreateInvoiceInput, error) {
	ids, err := parseIDs(req.JobIDs, "job_ids")
	if err != nil {
		return service.CreateInvoiceInput{}, err
	}
	input := service.CreateInvoiceInput{
		JobIDs:          ids,
		DispatchPercent: req.DispatchPercent,
		InvoiceNumber:   req.InvoiceNumber,
		BilledTo:        req.BilledTo,
		BilledEmail:     req.BilledEmail,
	}
	invoiceDate, err := parseOptionalDate(req.InvoiceDate, "invoice_date")
	if err != nil {
		return input, err
	}
	if invoiceDate != nil {
		input.InvoiceDate = *invoiceDate
	}
	if input.PeriodStart, err = parseOptionalDate(req.PeriodStart, "period_start"); err != nil {
		return input, err
	}
	if input.PeriodEnd, err = parseOptionalDate(req.PeriodEnd, "period_end"); err != nil {
		return input, err
	}
	return input, nil
}

func (h *Handler) previewInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.handleError(c, err)
		return
	}
	preview, err := h.invoices.Preview(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	ids := make([]uuid.UUID, 0, len(preview.Jobs))
	for _, job := range preview.Jobs {
		ids = append(ids, job.ID)
	}
	c.JSON(http.StatusOK, previewResponse{
		InvoiceNumber:  preview.InvoiceNumber,
		InvoiceDate:    formatDate(preview.InvoiceDate),
		DispatcherID:   preview.DispatcherID,
		DispatcherName: preview.DispatcherName,
		BilledTo:       preview.BilledTo,
		BilledEmail:    preview.BilledEmail,
		JobIDs:         ids,
		totalsResponse: totalsResponse{
			SubTotal:        preview.Totals.SubTotal,
			DispatchPercent: preview.Totals.Percent,
			Commission:      preview.Totals.Commission,
			HST:             preview.Totals.HST,
			Total:           preview.Totals.Total,
		},
	})
}

func (h *Handler) createInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.handleError(c, err)
		return
	}
	view, err := h.invoices.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toInvoice(*view.Invoice, view.Jobs))
}

func (h *Handler) updateInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ids, err := parseIDs(req.JobIDs, "job_ids")
	if err != nil {
		h.handleError(c, err)
		return
	}
	invoiceDate, err := parseOptionalDate(req.InvoiceDate, "invoice_date")
	if err != nil {
		h.handleError(c, err)
		return
	}

	view, err := h.invoices.Update(c.Request.Context(), id, service.UpdateInvoiceInput{
		JobIDs:          ids,
		DispatchPercent: req.DispatchPercent,
		InvoiceNumber:   req.InvoiceNumber,
		InvoiceDate:     invoiceDate,
		BilledTo:        req.BilledTo,
		BilledEmail:     req.BilledEmail,
		Status:          req.Status,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvoice(*view.Invoice, view.Jobs))
}

func (h *Handler) getInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.invoices.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvoice(*view.Invoice, view.Jobs))
}

func (h *Handler) listInvoices(c *gin.Context) {
	var filter repository.InvoiceFilter
	if raw := c.Query("dispatcher_id"); raw != "" {
		id, err := parseID(raw, "dispatcher_id")
		if err != nil {
			h.handleError(c, err)
			return
		}
		filter.DispatcherID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := model.ParseInvoiceStatus(raw)
		if !ok {
			badRequest(c, "invalid status")
			return
		}
		filter.Status = &status
	}

	invoices, err := h.invoices.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	resp := make([]invoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		resp = append(resp, toInvoice(invoice, nil))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) deleteInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.invoices.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) invoicePDF(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	doc, err := h.invoices.RenderPDF(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendDocument(c, doc)
}

func (h *Handler) invoiceExcel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	doc, err := h.invoices.ExportExcel(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendDocument(c, doc)
}
