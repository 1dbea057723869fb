package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/roach88/paddock/internal/entity"
)

// Phase names a stage of the day loop.
type Phase string

const (
	PhaseSeasonStart Phase = "season_start"
	PhaseSigning     Phase = "signing"
	PhaseRaces       Phase = "races"
	PhaseOffers      Phase = "offers"
)

// StepError reports a failure inside one day of the loop.
//
// StepError includes structured fields for diagnostics: the phase that
// failed, the simulated date and the run it belongs to.
type StepError struct {
	Phase Phase
	Date  time.Time
	RunID string
	Err   error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("%s on %s (run=%s): %v", e.Phase, e.Date.Format(time.DateOnly), e.RunID, e.Err)
	}
	return fmt.Sprintf("%s on %s: %v", e.Phase, e.Date.Format(time.DateOnly), e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err leaves the tables untrustworthy.
// Uses errors.As to see through StepError and other wrapping.
func IsFatal(err error) bool {
	return entity.IsStateError(err)
}

// PhaseOf returns the phase err was raised in, if it is a StepError.
func PhaseOf(err error) (Phase, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Phase, true
	}
	return "", false
}
