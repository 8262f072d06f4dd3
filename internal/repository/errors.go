package repository

import "errors"

var (
	// ErrJobClaimed means a job was linked to another invoice between the read
	// and the conditional update.
	ErrJobClaimed = errors.New("job already belongs to an invoice")
	// ErrJobInvoiced refuses deleting a job that is still on an invoice.
	ErrJobInvoiced = errors.New("job is linked to an invoice")
	// ErrLinesRemain aborts an invoice deletion that left line items behind.
	ErrLinesRemain = errors.New("invoice lines were not fully removed")
)
