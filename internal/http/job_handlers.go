package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/haulops-billing/internal/billing"
	"github.com/nurpe/haulops-billing/internal/model"
	"github.com/nurpe/haulops-billing/internal/repository"
	"github.com/nurpe/haulops-billing/internal/service"
)

const maxImageBytes = 20 << 20

// jobRequest takes weight and ticket_ids raw: clients send a number, a
// string, an array or a JSON string of an array.
type jobRequest struct {
	DateOfJob       string           `json:"date_of_job" binding:"required"`
	DispatcherID    string           `json:"dispatcher_id" binding:"required"`
	JobTypeID       string           `json:"job_type_id" binding:"required"`
	DriverID        *string          `json:"driver_id"`
	UnitID          *string          `json:"unit_id"`
	StartTime       string           `json:"start_time"`
	EndTime         string           `json:"end_time"`
	DriverStartTime string           `json:"driver_start_time"`
	DriverEndTime   string           `json:"driver_end_time"`
	Weight          json.RawMessage  `json:"weight"`
	Loads           int              `json:"loads"`
	TicketIDs       json.RawMessage  `json:"ticket_ids"`
	ManualAmount    *decimal.Decimal `json:"manual_amount"`
}

type jobResponse struct {
	ID               uuid.UUID           `json:"id"`
	DateOfJob        string              `json:"date_of_job"`
	DispatcherID     uuid.UUID           `json:"dispatcher_id"`
	DispatcherName   string              `json:"dispatcher_name,omitempty"`
	JobTypeID        uuid.UUID           `json:"job_type_id"`
	JobType          *jobTypeResponse    `json:"job_type,omitempty"`
	DriverID         *uuid.UUID          `json:"driver_id"`
	DriverName       string              `json:"driver_name,omitempty"`
	UnitID           *uuid.UUID          `json:"unit_id"`
	UnitName         string              `json:"unit_name,omitempty"`
	StartTime        string              `json:"start_time"`
	EndTime          string              `json:"end_time"`
	DriverStartTime  string              `json:"driver_start_time"`
	DriverEndTime    string              `json:"driver_end_time"`
	Weight           []decimal.Decimal   `json:"weight"`
	Loads            int                 `json:"loads"`
	TicketIDs        []string            `json:"ticket_ids"`
	ImageURLs        []string            `json:"image_urls"`
	JobGrossAmount   decimal.Decimal     `json:"job_gross_amount"`
	ManualAmount     bool                `json:"manual_amount"`
	DriverPay        decimal.Decimal     `json:"driver_pay"`
	EstimatedFuel    decimal.Decimal     `json:"estimated_fuel"`
	EstimatedRevenue decimal.Decimal     `json:"estimated_revenue"`
	InvoiceID        *uuid.UUID          `json:"invoice_id"`
	InvoiceStatus    model.InvoiceStatus `json:"invoice_status"`
}

func toJob(job model.Job) jobResponse {
	resp := jobResponse{
		ID:               job.ID,
		DateOfJob:        formatDate(job.DateOfJob),
		DispatcherID:     job.DispatcherID,
		JobTypeID:        job.JobTypeID,
		DriverID:         job.DriverID,
		UnitID:           job.UnitID,
		StartTime:        job.StartTime,
		EndTime:          job.EndTime,
		DriverStartTime:  job.DriverStartTime,
		DriverEndTime:    job.DriverEndTime,
		Weight:           nonNil(billing.NormalizeNumbers(job.Weight)),
		Loads:            job.Loads,
		TicketIDs:        nonNil(billing.NormalizeStrings(job.TicketIDs)),
		ImageURLs:        nonNil(billing.NormalizeStrings(job.ImageURLs)),
		JobGrossAmount:   job.JobGrossAmount,
		ManualAmount:     job.ManualAmount,
		DriverPay:        job.DriverPay,
		EstimatedFuel:    job.EstimatedFuel,
		EstimatedRevenue: job.EstimatedRevenue,
		InvoiceID:        job.InvoiceID,
		InvoiceStatus:    job.InvoiceStatus,
	}
	if job.Dispatcher != nil {
		resp.DispatcherName = job.Dispatcher.Name
	}
	if job.JobType != nil {
		jt := toJobType(*job.JobType)
		resp.JobType = &jt
	}
	if job.Driver != nil {
		resp.DriverName = job.Driver.Name
	}
	if job.Unit != nil {
		resp.UnitName = job.Unit.Name
	}
	return resp
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}

func (req jobRequest) toInput() (service.JobInput, error) {
	var input service.JobInput
	var err error
	if input.DateOfJob, err = parseDate(req.DateOfJob, "date_of_job"); err != nil {
		return input, err
	}
	if input.DispatcherID, err = parseID(req.DispatcherID, "dispatcher_id"); err != nil {
		return input, err
	}
	if input.JobTypeID, err = parseID(req.JobTypeID, "job_type_id"); err != nil {
		return input, err
	}
	if input.DriverID, err = parseOptionalID(req.DriverID, "driver_id"); err != nil {
		return input, err
	}
	if input.UnitID, err = parseOptionalID(req.UnitID, "unit_id"); err != nil {
		return input, err
	}
	input.StartTime = req.StartTime
	input.EndTime = req.EndTime
	input.DriverStartTime = req.DriverStartTime
	input.DriverEndTime = req.DriverEndTime
	input.Weight = req.Weight
	input.Loads = req.Loads
	input.TicketIDs = req.TicketIDs
	input.ManualAmount = req.ManualAmount
	return input, nil
}

func (h *Handler) createJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.handleError(c, err)
		return
	}
	job, err := h.jobs.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toJob(*job))
}

func (h *Handler) updateJob(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.handleError(c, err)
		return
	}
	job, err := h.jobs.Update(c.Request.Context(), id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toJob(*job))
}

func (h *Handler) getJob(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toJob(*job))
}

func (h *Handler) listJobs(c *gin.Context) {
	var filter repository.JobFilter
	var err error

	dispatcherID, invoiceID := c.Query("dispatcher_id"), c.Query("invoice_id")
	from, to := c.Query("from"), c.Query("to")
	if filter.DispatcherID, err = parseOptionalID(&dispatcherID, "dispatcher_id"); err != nil {
		h.handleError(c, err)
		return
	}
	if filter.InvoiceID, err = parseOptionalID(&invoiceID, "invoice_id"); err != nil {
		h.handleError(c, err)
		return
	}
	if filter.From, err = parseOptionalDate(&from, "from"); err != nil {
		h.handleError(c, err)
		return
	}
	if filter.To, err = parseOptionalDate(&to, "to"); err != nil {
		h.handleError(c, err)
		return
	}
	if raw := c.Query("invoiced"); raw != "" {
		invoiced, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "invalid invoiced")
			return
		}
		filter.Invoiced = &invoiced
	}

	jobs, err := h.jobs.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	resp := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		resp = append(resp, toJob(job))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) deleteJob(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.jobs.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) attachImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if header.Size > maxImageBytes {
		badRequest(c, "file is too large")
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "cannot read file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		badRequest(c, "cannot read file")
		return
	}
	job, err := h.jobs.AttachImage(c.Request.Context(), id, header.Filename, data)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toJob(*job))
}
