package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict covers requests that clash with the current state, such as
	// invoicing a job that is already on an invoice.
	ErrConflict = errors.New("conflict")
	// ErrInconsistentState reports a write that stopped half way and was
	// rolled back.
	ErrInconsistentState = errors.New("inconsistent state")
)

func notFound(err error, what string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
	}
	return err
}

// missingReference turns a lookup miss into a validation error: the record
// being saved points at something that does not exist.
func missingReference(err error, what string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s does not exist", ErrInvalidInput, what, id)
	}
	return err
}

// dateOnly keeps the calendar date as written and drops clock and zone.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
