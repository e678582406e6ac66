package errs

import (
	"errors"
)

// Business error kinds returned by the reservation engine. Every service
// operation fails with exactly one of these; transport maps them to statuses.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidPeriod     = errors.New("invalid period")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrReturnedImmutable = errors.New("returned reservation is immutable")
	ErrDeleteInProgress  = errors.New("reservation in progress cannot be deleted")
)
