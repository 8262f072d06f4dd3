package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nurpe/haulops-billing/internal/model"
)

const DefaultRoundingMinutes = 15

var (
	DefaultFuelCostPerHour = decimal.NewFromInt(30)
	hundred                = decimal.NewFromInt(100)
)

// JobInput is what the calculators read from a job and its job type. Weights
// must already be normalized.
type JobInput struct {
	DispatchType    model.DispatchType
	Rate            decimal.Decimal
	StartTime       string
	EndTime         string
	DriverStartTime string
	DriverEndTime   string
	Weights         []decimal.Decimal
	Loads           int
}

// DriverRates carries both driver rate fields. A nil RevenueSharePercent means
// the driver record predates the split and HourlyRate doubles as the percent.
type DriverRates struct {
	HourlyRate          decimal.Decimal
	RevenueSharePercent *decimal.Decimal
}

type PayResult struct {
	Amount     decimal.Decimal
	LegacyRate bool
}

type JobFigures struct {
	BilledHours      decimal.Decimal
	DriverHours      decimal.Decimal
	GrossAmount      decimal.Decimal
	DriverPay        decimal.Decimal
	EstimatedFuel    decimal.Decimal
	EstimatedRevenue decimal.Decimal
	LegacyDriverRate bool
}

type Calculator struct {
	RoundingMinutes int
	FuelCostPerHour decimal.Decimal
}

func NewCalculator(roundingMinutes int, fuelCostPerHour decimal.Decimal) Calculator {
	return Calculator{RoundingMinutes: roundingMinutes, FuelCostPerHour: fuelCostPerHour}
}

func DefaultCalculator() Calculator {
	return NewCalculator(DefaultRoundingMinutes, DefaultFuelCostPerHour)
}

// BilledHours is the chargeable shift length of an Hourly job.
func (c Calculator) BilledHours(in JobInput) (decimal.Decimal, error) {
	return ShiftHours(in.StartTime, in.EndTime, c.RoundingMinutes)
}

// DriverHours uses the driver's own clock readings when present and falls
// back to the billed shift. A job with no times at all has zero driver hours.
func (c Calculator) DriverHours(in JobInput) (decimal.Decimal, error) {
	start, end := in.DriverStartTime, in.DriverEndTime
	if blank(start) || blank(end) {
		start, end = in.StartTime, in.EndTime
	}
	if blank(start) || blank(end) {
		return decimal.Zero, nil
	}
	return ShiftHours(start, end, c.RoundingMinutes)
}

// GrossAmount prices a job by its dispatch type, rounded to cents.
func (c Calculator) GrossAmount(in JobInput) (decimal.Decimal, error) {
	switch in.DispatchType {
	case model.DispatchHourly:
		hours, err := c.BilledHours(in)
		if err != nil {
			return decimal.Zero, err
		}
		return hours.Mul(in.Rate).Round(2), nil
	case model.DispatchTonnage:
		return SumNumbers(in.Weights).Mul(in.Rate).Round(2), nil
	case model.DispatchLoad:
		return decimal.NewFromInt(int64(in.Loads)).Mul(in.Rate).Round(2), nil
	case model.DispatchFixed:
		return in.Rate.Round(2), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownDispatchType, in.DispatchType)
	}
}

// DriverPay pays hours for Hourly and Tonnage work and a share of the job
// revenue for Load and Fixed work.
func (c Calculator) DriverPay(in JobInput, rates DriverRates) (PayResult, error) {
	switch in.DispatchType {
	case model.DispatchHourly, model.DispatchTonnage:
		hours, err := c.DriverHours(in)
		if err != nil {
			return PayResult{}, err
		}
		return PayResult{Amount: hours.Mul(rates.HourlyRate).Round(2)}, nil
	case model.DispatchLoad:
		share, legacy := rates.sharePercent()
		amount := decimal.NewFromInt(int64(in.Loads)).Mul(in.Rate).Mul(share).Div(hundred)
		return PayResult{Amount: amount.Round(2), LegacyRate: legacy}, nil
	case model.DispatchFixed:
		share, legacy := rates.sharePercent()
		return PayResult{Amount: in.Rate.Mul(share).Div(hundred).Round(2), LegacyRate: legacy}, nil
	default:
		return PayResult{}, fmt.Errorf("%w: %q", ErrUnknownDispatchType, in.DispatchType)
	}
}

func (r DriverRates) sharePercent() (decimal.Decimal, bool) {
	if r.RevenueSharePercent != nil {
		return *r.RevenueSharePercent, false
	}
	return r.HourlyRate, true
}

func (c Calculator) EstimatedFuel(driverHours decimal.Decimal) decimal.Decimal {
	return driverHours.Mul(c.FuelCostPerHour).Round(2)
}

// EstimatedRevenue may be negative when the job pays less than the driver.
func EstimatedRevenue(gross, driverPay decimal.Decimal) decimal.Decimal {
	return gross.Sub(driverPay)
}

// Evaluate computes every derived figure of a job. rates is nil when no
// driver is assigned. When the dispatch type is unknown the amounts are zero
// and ErrUnknownDispatchType is returned with them.
func (c Calculator) Evaluate(in JobInput, rates *DriverRates) (JobFigures, error) {
	var figures JobFigures

	if in.DispatchType == model.DispatchHourly {
		hours, err := c.BilledHours(in)
		if err != nil {
			return JobFigures{}, err
		}
		figures.BilledHours = hours
	}

	driverHours, err := c.DriverHours(in)
	if err != nil {
		return JobFigures{}, err
	}
	figures.DriverHours = driverHours
	figures.EstimatedFuel = c.EstimatedFuel(driverHours)

	gross, err := c.GrossAmount(in)
	if err != nil {
		return figures, err
	}
	figures.GrossAmount = gross

	if rates != nil {
		pay, err := c.DriverPay(in, *rates)
		if err != nil {
			return figures, err
		}
		figures.DriverPay = pay.Amount
		figures.LegacyDriverRate = pay.LegacyRate
	}
	figures.EstimatedRevenue = EstimatedRevenue(figures.GrossAmount, figures.DriverPay)
	return figures, nil
}

func blank(value string) bool {
	return strings.TrimSpace(value) == ""
}
