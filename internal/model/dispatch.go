package model

import "strings"

type DispatchType string

const (
	DispatchHourly  DispatchType = "Hourly"
	DispatchTonnage DispatchType = "Tonnage"
	DispatchLoad    DispatchType = "Load"
	DispatchFixed   DispatchType = "Fixed"
)

// ParseDispatchType accepts any casing and returns false for values outside the
// four billing methods.
func ParseDispatchType(raw string) (DispatchType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hourly":
		return DispatchHourly, true
	case "tonnage":
		return DispatchTonnage, true
	case "load", "loads":
		return DispatchLoad, true
	case "fixed":
		return DispatchFixed, true
	default:
		return DispatchType(raw), false
	}
}

func (d DispatchType) Valid() bool {
	_, ok := ParseDispatchType(string(d))
	return ok
}

type InvoiceStatus string

const (
	StatusPending  InvoiceStatus = "Pending"
	StatusInvoiced InvoiceStatus = "Invoiced"
	StatusRaised   InvoiceStatus = "Raised"
	StatusReceived InvoiceStatus = "Received"
	StatusPaid     InvoiceStatus = "Paid"
)

// ParseInvoiceStatus maps the spellings found in older records onto the
// canonical statuses. "Not Invoiced" is the same state as Pending.
func ParseInvoiceStatus(raw string) (InvoiceStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
	switch normalized {
	case "pending", "not invoiced", "":
		return StatusPending, true
	case "invoiced":
		return StatusInvoiced, true
	case "raised":
		return StatusRaised, true
	case "received":
		return StatusReceived, true
	case "paid":
		return StatusPaid, true
	default:
		return InvoiceStatus(raw), false
	}
}
