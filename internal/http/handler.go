package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/haulops-billing/internal/service"
)

const dateLayout = "2006-01-02"

type Handler struct {
	refs     *service.ReferenceService
	jobs     *service.JobService
	invoices *service.InvoiceService
	reports  *service.ReportService
	log      zerolog.Logger
}

func NewHandler(
	refs *service.ReferenceService,
	jobs *service.JobService,
	invoices *service.InvoiceService,
	reports *service.ReportService,
	log zerolog.Logger,
) *Handler {
	return &Handler{refs: refs, jobs: jobs, invoices: invoices, reports: reports, log: log}
}

func (h *Handler) Register(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/companies", h.createCompany)
	router.GET("/companies", h.listCompanies)
	router.POST("/dispatchers", h.createDispatcher)
	router.GET("/dispatchers", h.listDispatchers)
	router.GET("/dispatchers/:id", h.getDispatcher)
	router.POST("/drivers", h.createDriver)
	router.GET("/drivers", h.listDrivers)
	router.POST("/units", h.createUnit)
	router.GET("/units", h.listUnits)
	router.POST("/job-types", h.createJobType)
	router.GET("/job-types", h.listJobTypes)

	jobs := router.Group("/jobs")
	jobs.POST("", h.createJob)
	jobs.GET("", h.listJobs)
	jobs.GET("/:id", h.getJob)
	jobs.PUT("/:id", h.updateJob)
	jobs.DELETE("/:id", h.deleteJob)
	jobs.POST("/:id/images", h.attachImage)

	invoices := router.Group("/invoices")
	invoices.POST("/preview", h.previewInvoice)
	invoices.POST("", h.createInvoice)
	invoices.GET("", h.listInvoices)
	invoices.GET("/:id", h.getInvoice)
	invoices.PUT("/:id", h.updateInvoice)
	invoices.DELETE("/:id", h.deleteInvoice)
	invoices.GET("/:id/pdf", h.invoicePDF)
	invoices.GET("/:id/export", h.invoiceExcel)

	reports := router.Group("/reports")
	reports.GET("/dispatchers", h.dispatcherReport)
	reports.GET("/dispatchers/export", h.exportDispatcherReport)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", service.ErrInvalidInput, field)
	}
	return id, nil
}

func parseOptionalID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := parseID(*raw, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseIDs(raw []string, field string) ([]uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(r, field)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseDate reads a YYYY-MM-DD calendar date as midnight UTC so it never
// shifts by a day.
func parseDate(raw, field string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", service.ErrInvalidInput, field)
	}
	return parsed, nil
}

func parseOptionalDate(raw *string, field string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := parseDate(*raw, field)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func sendDocument(c *gin.Context, doc *service.Document) {
	c.Header("Content-Disposition", "attachment; filename=\""+doc.FileName+"\"")
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}
