package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nurpe/haulops-billing/internal/model"
	"github.com/nurpe/haulops-billing/internal/service"
)

type dispatcherSummaryResponse struct {
	DispatcherID     string          `json:"dispatcher_id,omitempty"`
	DispatcherName   string          `json:"dispatcher_name"`
	JobCount         int64           `json:"job_count"`
	GrossAmount      decimal.Decimal `json:"gross_amount"`
	DriverPay        decimal.Decimal `json:"driver_pay"`
	EstimatedFuel    decimal.Decimal `json:"estimated_fuel"`
	EstimatedRevenue decimal.Decimal `json:"estimated_revenue"`
}

type reportResponse struct {
	PeriodStart string                      `json:"period_start"`
	PeriodEnd   string                      `json:"period_end"`
	Invoiced    *bool                       `json:"invoiced,omitempty"`
	TotalJobs   int64                       `json:"total_jobs"`
	Total       dispatcherSummaryResponse   `json:"total"`
	Dispatchers []dispatcherSummaryResponse `json:"dispatchers"`
}

func (h *Handler) dispatcherReport(c *gin.Context) {
	input, ok := h.reportInput(c)
	if !ok {
		return
	}
	report, err := h.reports.Summary(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := reportResponse{
		PeriodStart: formatDate(report.PeriodStart),
		PeriodEnd:   formatDate(report.PeriodEnd),
		Invoiced:    report.Invoiced,
		TotalJobs:   report.TotalJobs,
		Total:       toDispatcherSummary(report.Total),
		Dispatchers: make([]dispatcherSummaryResponse, 0, len(report.Rows)),
	}
	resp.Total.DispatcherID = ""
	for _, row := range report.Rows {
		resp.Dispatchers = append(resp.Dispatchers, toDispatcherSummary(row))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) exportDispatcherReport(c *gin.Context) {
	input, ok := h.reportInput(c)
	if !ok {
		return
	}
	doc, err := h.reports.Export(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendDocument(c, doc)
}

// reportInput reads from, to, invoiced and a comma separated status list.
func (h *Handler) reportInput(c *gin.Context) (service.ReportInput, bool) {
	var input service.ReportInput
	var err error

	if input.PeriodStart, err = parseDate(c.Query("from"), "from"); err != nil {
		h.handleError(c, err)
		return input, false
	}
	if input.PeriodEnd, err = parseDate(c.Query("to"), "to"); err != nil {
		h.handleError(c, err)
		return input, false
	}
	if raw := c.Query("invoiced"); raw != "" {
		invoiced, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "invalid invoiced")
			return input, false
		}
		input.Invoiced = &invoiced
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				input.Statuses = append(input.Statuses, model.InvoiceStatus(part))
			}
		}
	}
	return input, true
}

func toDispatcherSummary(row model.DispatcherSummary) dispatcherSummaryResponse {
	return dispatcherSummaryResponse{
		DispatcherID:     row.DispatcherID.String(),
		DispatcherName:   row.DispatcherName,
		JobCount:         row.JobCount,
		GrossAmount:      row.GrossAmount,
		DriverPay:        row.DriverPay,
		EstimatedFuel:    row.EstimatedFuel,
		EstimatedRevenue: row.EstimatedRevenue,
	}
}
