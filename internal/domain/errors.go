package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is the base error for all entity validation failures.
// Entity-specific validation errors wrap it so callers can match the whole
// class with errors.Is(err, domain.ErrValidation).
var ErrValidation = errors.New("validation failed")

// StateConflictError is returned when a reminder operation is attempted from
// a state it is not legal in, e.g. acknowledging a reminder that is not due.
// It names both the state the operation required and the state the reminder
// was actually in.
type StateConflictError struct {
	Expected ReminderStatus
	Actual   ReminderStatus
}

// Error implements the error interface for StateConflictError.
func (e *StateConflictError) Error() string {
	return fmt.Sprintf("reminder is %q, expected %q", e.Actual, e.Expected)
}

// NewStateConflictError creates a StateConflictError for the given states.
func NewStateConflictError(expected, actual ReminderStatus) *StateConflictError {
	return &StateConflictError{Expected: expected, Actual: actual}
}

// IsStateConflict reports whether err is a reminder state conflict.
func IsStateConflict(err error) bool {
	var sc *StateConflictError
	return errors.As(err, &sc)
}
