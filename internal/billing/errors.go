package billing

import "errors"

var (
	// ErrUnknownDispatchType marks a job type without a usable billing method.
	// Calculators return a zero amount alongside it.
	ErrUnknownDispatchType = errors.New("unknown dispatch type")
	ErrInvalidTime         = errors.New("invalid time of day")
)
