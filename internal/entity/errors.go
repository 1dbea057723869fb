package entity

import (
	"errors"
	"fmt"
)

// StateError reports a broken invariant in the simulation tables.
//
// State errors are unrecoverable: standings and contracts computed after one
// would be silently wrong, so the day loop aborts when it sees one.
// Configuration gaps and bad human input are never reported this way.
type StateError struct {
	// Code identifies the invariant that failed.
	Code StateErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains additional context (ids, counts).
	Details map[string]string
}

// StateErrorCode categorizes state errors.
type StateErrorCode string

const (
	// ErrCodeDuplicateID indicates two records share an id.
	ErrCodeDuplicateID StateErrorCode = "DUPLICATE_ID"

	// ErrCodeDuplicateActiveDriver indicates a driver holds two active
	// contracts at the same tier for one year, or sits twice on a grid.
	ErrCodeDuplicateActiveDriver StateErrorCode = "DUPLICATE_ACTIVE_DRIVER"

	// ErrCodeNegativeSlots indicates a slot count dropped below zero.
	ErrCodeNegativeSlots StateErrorCode = "NEGATIVE_SLOTS"

	// ErrCodeSlotConservation indicates signed+reserved+free != max.
	ErrCodeSlotConservation StateErrorCode = "SLOT_CONSERVATION"

	// ErrCodeRoundGap indicates standings rounds are not dense.
	ErrCodeRoundGap StateErrorCode = "ROUND_GAP"
)

// Error implements the error interface.
func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewStateError creates a StateError with optional key/value detail pairs.
func NewStateError(code StateErrorCode, message string, kv ...any) *StateError {
	e := &StateError{Code: code, Message: message}
	if len(kv) > 0 {
		e.Details = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			e.Details[fmt.Sprint(kv[i])] = fmt.Sprint(kv[i+1])
		}
	}
	return e
}

// IsStateError returns true if err wraps a StateError.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

// IsCode returns true if err wraps a StateError with the given code.
func IsCode(err error, code StateErrorCode) bool {
	var se *StateError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
