package render

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/haulops-billing/internal/billing"
	"github.com/nurpe/haulops-billing/internal/model"
)

const (
	DateLayout  = "2006-01-02"
	monthLayout = "January 2006"
)

// Company is the issuing company printed in the invoice header.
type Company struct {
	Name      string
	Address   string
	TaxNumber string
	Email     string
	Phone     string
}

// InvoiceData is an invoice together with the jobs on it. Jobs should carry
// their unit, driver and job type (with company) preloaded.
type InvoiceData struct {
	Invoice         model.Invoice
	Jobs            []model.Job
	RoundingMinutes int
}

type Header struct {
	Company        Company
	InvoiceNumber  string
	InvoiceDate    string
	DispatcherName string
	BilledTo       string
	BilledEmail    string
}

type Row struct {
	JobID    uuid.UUID
	Date     time.Time
	DateText string
	Unit     string
	Driver   string
	Customer string
	Route    string
	Tickets  string
	Quantity string
	Rate     string
	Amount   string
}

// Month is a run of rows sharing a calendar month.
type Month struct {
	Label string
	Rows  []Row
}

type TotalLine struct {
	Label string
	Value string
}

type Image struct {
	JobID uuid.UUID
	Path  string
}

type Document struct {
	Header Header
	Rows   []Row
	Months []Month
	Totals []TotalLine
	Images []Image
}

var Columns = []string{"Date", "Unit", "Driver", "Customer", "Route", "Tickets", "Qty", "Rate", "Amount"}

func (r Row) Cells() []string {
	return []string{r.DateText, r.Unit, r.Driver, r.Customer, r.Route, r.Tickets, r.Quantity, r.Rate, r.Amount}
}

// Prepare lays out everything an invoice document prints. It does no I/O;
// image paths are resolved later by the output writer.
func Prepare(company Company, data InvoiceData) Document {
	invoice := data.Invoice

	doc := Document{
		Header: Header{
			Company:       company,
			InvoiceNumber: invoice.InvoiceNumber,
			InvoiceDate:   formatDate(invoice.InvoiceDate),
			BilledTo:      invoice.BilledTo,
			BilledEmail:   invoice.BilledEmail,
		},
	}
	if invoice.Dispatcher != nil {
		doc.Header.DispatcherName = invoice.Dispatcher.Name
	}

	snapshots := make(map[uuid.UUID]decimal.Decimal, len(invoice.Lines))
	for _, line := range invoice.Lines {
		snapshots[line.JobID] = line.LineAmount
	}

	jobs := make([]model.Job, len(data.Jobs))
	copy(jobs, data.Jobs)
	sort.SliceStable(jobs, func(i, j int) bool {
		return calendarDay(jobs[i].DateOfJob).Before(calendarDay(jobs[j].DateOfJob))
	})

	for _, job := range jobs {
		amount, ok := snapshots[job.ID]
		if !ok {
			amount = job.JobGrossAmount
		}
		doc.Rows = append(doc.Rows, buildRow(job, amount, data.RoundingMinutes))
		for _, p := range billing.NormalizeStrings(job.ImageURLs) {
			doc.Images = append(doc.Images, Image{JobID: job.ID, Path: p})
		}
	}
	doc.Months = groupByMonth(doc.Rows)
	doc.Totals = totalLines(invoice)
	return doc
}

func buildRow(job model.Job, amount decimal.Decimal, roundingMinutes int) Row {
	row := Row{
		JobID:    job.ID,
		Date:     calendarDay(job.DateOfJob),
		DateText: formatDate(job.DateOfJob),
		Tickets:  strings.Join(billing.NormalizeStrings(job.TicketIDs), ", "),
		Amount:   billing.FormatAmount(amount),
	}
	if job.Unit != nil {
		row.Unit = job.Unit.Name
	}
	if job.Driver != nil {
		row.Driver = job.Driver.Name
	}
	if jt := job.JobType; jt != nil {
		if jt.Company != nil {
			row.Customer = jt.Company.Name
		}
		row.Route = Route(jt.StartLocation, jt.EndLocation)
		row.Rate = billing.FormatRate(jt.RateOfJob)

		var hours decimal.Decimal
		if jt.DispatchType == model.DispatchHourly {
			// a bad clock value was already reported when the job was saved
			hours, _ = billing.ShiftHours(job.StartTime, job.EndTime, roundingMinutes)
		}
		row.Quantity = billing.FormatQuantity(jt.DispatchType, hours, billing.NormalizeNumbers(job.Weight), job.Loads)
	}
	return row
}

// Route is "start to end", or blank when either end is missing.
func Route(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return ""
	}
	return start + " to " + end
}

// groupByMonth expects rows sorted by date.
func groupByMonth(rows []Row) []Month {
	var months []Month
	for _, row := range rows {
		label := row.Date.Format(monthLayout)
		if n := len(months); n > 0 && months[n-1].Label == label {
			months[n-1].Rows = append(months[n-1].Rows, row)
			continue
		}
		months = append(months, Month{Label: label, Rows: []Row{row}})
	}
	return months
}

func totalLines(invoice model.Invoice) []TotalLine {
	return []TotalLine{
		{Label: "Subtotal", Value: billing.FormatCurrency(invoice.SubTotal)},
		{Label: "Commission (" + billing.FormatPercent(invoice.DispatchPercent) + ")", Value: billing.FormatCurrency(invoice.Commission)},
		{Label: "HST (" + billing.FormatPercent(billing.TaxRate.Shift(2)) + ")", Value: billing.FormatCurrency(invoice.HST)},
		{Label: "Total", Value: billing.FormatCurrency(invoice.Total)},
	}
}

// calendarDay drops the clock and zone the driver attached to a date column
// without moving it to another day.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
