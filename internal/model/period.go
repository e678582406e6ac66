package model

import (
	"time"

	"github.com/pkg/errors"

	"github.com/esportehub/equipment-reservation/internal/errs"
)

// MaxPeriodDuration bounds how long equipment may be held in one reservation.
const MaxPeriodDuration = 48 * time.Hour

// Period is the validated [withdrawalAt, returnAt) window of a reservation.
// It can only be obtained through NewPeriod; a zero Period is not valid.
type Period struct {
	WithdrawalAt time.Time `json:"withdrawalAt" db:"withdrawal_at"`
	ReturnAt     time.Time `json:"returnAt" db:"return_at"`
}

func NewPeriod(withdrawalAt, returnAt, now time.Time) (Period, error) {
	if withdrawalAt.Before(now) {
		return Period{}, errors.Wrap(errs.ErrInvalidPeriod, "withdrawal is in the past")
	}
	if returnAt.Before(withdrawalAt) {
		return Period{}, errors.Wrap(errs.ErrInvalidPeriod, "return precedes withdrawal")
	}
	if returnAt.Sub(withdrawalAt) > MaxPeriodDuration {
		return Period{}, errors.Wrap(errs.ErrInvalidPeriod, "window longer than 48h")
	}
	return Period{WithdrawalAt: withdrawalAt, ReturnAt: returnAt}, nil
}

// Overlaps reports whether two half-open windows share an instant.
// Back-to-back windows do not overlap.
func (p Period) Overlaps(other Period) bool {
	return p.WithdrawalAt.Before(other.ReturnAt) && other.WithdrawalAt.Before(p.ReturnAt)
}

func (p Period) Duration() time.Duration {
	return p.ReturnAt.Sub(p.WithdrawalAt)
}
