package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/haulops-billing/internal/model"
)

type companyRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

type companyResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone"`
}

type dispatcherRequest struct {
	Name              string          `json:"name" binding:"required"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
}

type dispatcherResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
}

type driverRequest struct {
	Name                string           `json:"name" binding:"required"`
	Phone               string           `json:"phone"`
	HourlyRate          decimal.Decimal  `json:"hourly_rate"`
	RevenueSharePercent *decimal.Decimal `json:"revenue_share_percent"`
}

type driverResponse struct {
	ID                  uuid.UUID        `json:"id"`
	Name                string           `json:"name"`
	Phone               string           `json:"phone"`
	HourlyRate          decimal.Decimal  `json:"hourly_rate"`
	RevenueSharePercent *decimal.Decimal `json:"revenue_share_percent"`
}

type unitRequest struct {
	Name string `json:"name" binding:"required"`
}

type unitResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type jobTypeRequest struct {
	Title         string          `json:"title" binding:"required"`
	CompanyID     string          `json:"company_id" binding:"required"`
	DispatchType  string          `json:"dispatch_type" binding:"required"`
	RateOfJob     decimal.Decimal `json:"rate_of_job"`
	StartLocation string          `json:"start_location"`
	EndLocation   string          `json:"end_location"`
}

type jobTypeResponse struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	CompanyID     uuid.UUID       `json:"company_id"`
	CompanyName   string          `json:"company_name,omitempty"`
	DispatchType  string          `json:"dispatch_type"`
	RateOfJob     decimal.Decimal `json:"rate_of_job"`
	StartLocation string          `json:"start_location"`
	EndLocation   string          `json:"end_location"`
}

func toCompany(c model.Company) companyResponse {
	return companyResponse{ID: c.ID, Name: c.Name, Address: c.Address, Email: c.Email, Phone: c.Phone}
}

func toDispatcher(d model.Dispatcher) dispatcherResponse {
	return dispatcherResponse{ID: d.ID, Name: d.Name, Email: d.Email, Phone: d.Phone, CommissionPercent: d.CommissionPercent}
}

func toDriver(d model.Driver) driverResponse {
	return driverResponse{ID: d.ID, Name: d.Name, Phone: d.Phone, HourlyRate: d.HourlyRate, RevenueSharePercent: d.RevenueSharePercent}
}

func toJobType(jt model.JobType) jobTypeResponse {
	resp := jobTypeResponse{
		ID:            jt.ID,
		Title:         jt.Title,
		CompanyID:     jt.CompanyID,
		DispatchType:  string(jt.DispatchType),
		RateOfJob:     jt.RateOfJob,
		StartLocation: jt.StartLocation,
		EndLocation:   jt.EndLocation,
	}
	if jt.Company != nil {
		resp.CompanyName = jt.Company.Name
	}
	return resp
}

func (h *Handler) createCompany(c *gin.Context) {
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	company := model.Company{Name: req.Name, Address: req.Address, Email: req.Email, Phone: req.Phone}
	if err := h.refs.CreateCompany(c.Request.Context(), &company); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCompany(company))
}

func (h *Handler) listCompanies(c *gin.Context) {
	companies, err := h.refs.ListCompanies(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	resp := make([]companyResponse, 0, len(companies))
	for _, company := range companies {
		resp = append(resp, toCompany(company))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createDispatcher(c *gin.Context) {
	var req dispatcherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	dispatcher := model.Dispatcher{Name: req.Name, Email: req.Email, Phone: req.Phone, CommissionPercent: req.CommissionPercent}
	if err := h.refs.CreateDispatcher(c.Request.Context(), &dispatcher); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDispatcher(dispatcher))
}

func (h *Handler) getDispatcher(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	dispatcher, err := h.refs.GetDispatcher(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDispatcher(*dispatcher))
}

func (h *Handler) listDispatchers(c *gin.Context) {
	dispatchers, err := h.refs.ListDispatchers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	resp := make([]dispatcherResponse, 0, len(dispatchers))
	for _, d := range dispatchers {
		resp = append(resp, toDispatcher(d))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createDriver(c *gin.Context) {
	var req driverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	driver := model.Driver{Name: req.Name, Phone: req.Phone, HourlyRate: req.HourlyRate, RevenueSharePercent: req.RevenueSharePercent}
	if err := h.refs.CreateDriver(c.Request.Context(), &driver); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDriver(driver))
}

func (h *Handler) listDrivers(c *gin.Context) {
	drivers, err := h.refs.ListDrivers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	resp := make([]driverResponse, 0, len(drivers))
	for _, d := range drivers {
		resp = append(resp, toDriver(d))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createUnit(c *gin.Context) {
	var req unitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	unit := model.Unit{Name: req.Name}
	if err := h.refs.CreateUnit(c.Request.Context(), &unit); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, unitResponse{ID: unit.ID, Name: unit.Name})
}

func (h *Handler) listUnits(c *gin.Context) {
	units, err := h.refs.ListUnits(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	resp := make([]unitResponse, 0, len(units))
	for _, u := range units {
		resp = append(resp, unitResponse{ID: u.ID, Name: u.Name})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createJobType(c *gin.Context) {
	var req jobTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	companyID, err := parseID(req.CompanyID, "company_id")
	if err != nil {
		h.handleError(c, err)
		return
	}
	jobType := model.JobType{
		Title:         req.Title,
		CompanyID:     companyID,
		DispatchType:  model.DispatchType(req.DispatchType),
		RateOfJob:     req.RateOfJob,
		StartLocation: strings.TrimSpace(req.StartLocation),
		EndLocation:   strings.TrimSpace(req.EndLocation),
	}
	if err := h.refs.CreateJobType(c.Request.Context(), &jobType); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toJobType(jobType))
}

func (h *Handler) listJobTypes(c *gin.Context) {
	var companyID *uuid.UUID
	if raw := c.Query("company_id"); raw != "" {
		id, err := parseID(raw, "company_id")
		if err != nil {
			h.handleError(c, err)
			return
		}
		companyID = &id
	}
	jobTypes, err := h.refs.ListJobTypes(c.Request.Context(), companyID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	resp := make([]jobTypeResponse, 0, len(jobTypes))
	for _, jt := range jobTypes {
		resp = append(resp, toJobType(jt))
	}
	c.JSON(http.StatusOK, resp)
}
