package harness

import "github.com/roach88/paddock/internal/entity"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	RunID string `json:"run_id"`

	// Date is the next day the game would simulate.
	Date string `json:"date"`

	// Races counts the races that produced results.
	Races int `json:"races"`

	// Digest is the content digest of the saved game.
	Digest string `json:"digest"`

	// Standings holds the latest round of every classification of every
	// series' most recent championship season.
	Standings []entity.Standing `json:"standings"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Errors:    []string{},
		Standings: []entity.Standing{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
