package model

import (
	"github.com/pkg/errors"

	"github.com/esportehub/equipment-reservation/internal/errs"
)

type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReturned   Status = "RETURNED"
)

// ActiveStatuses hold units against equipment capacity.
var ActiveStatuses = []Status{StatusScheduled, StatusPending, StatusInProgress}

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusPending, StatusInProgress, StatusReturned:
		return true
	}
	return false
}

// Active reports whether the status still commits inventory.
func (s Status) Active() bool {
	return s.Valid() && s != StatusReturned
}

func (s Status) Terminal() bool {
	return s == StatusReturned
}

// CanTransitionTo validates an edge of the lifecycle graph:
// SCHEDULED|PENDING -> IN_PROGRESS -> RETURNED. Everything else is illegal,
// including no-op transitions into a terminal state.
func (s Status) CanTransitionTo(next Status) error {
	switch {
	case (s == StatusScheduled || s == StatusPending) && next == StatusInProgress:
		return nil
	case s == StatusInProgress && next == StatusReturned:
		return nil
	}
	return errors.Wrapf(errs.ErrIllegalTransition, "%s -> %s", s, next)
}
