package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DispatcherSummary totals the jobs of one dispatcher over a period.
type DispatcherSummary struct {
	DispatcherID     uuid.UUID
	DispatcherName   string
	JobCount         int64
	GrossAmount      decimal.Decimal
	DriverPay        decimal.Decimal
	EstimatedFuel    decimal.Decimal
	EstimatedRevenue decimal.Decimal
}

type JobReport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Invoiced    *bool
	Statuses    []InvoiceStatus
	TotalJobs   int64
	Total       DispatcherSummary
	Rows        []DispatcherSummary
}
