package engine

import (
	"time"

	"github.com/roach88/paddock/internal/entity"
)

// Clock is the simulation calendar.
//
// The current date lives in the tables' Meta so that a saved game resumes
// on the day after the last completed Step. Dates are UTC midnights.
type Clock struct {
	meta *entity.Meta
}

// NewClock creates a clock over meta. A zero date is moved to start.
func NewClock(meta *entity.Meta, start time.Time) *Clock {
	if meta.Date.IsZero() {
		meta.Date = Midnight(start)
	}
	return &Clock{meta: meta}
}

// Today returns the day being simulated.
func (c *Clock) Today() time.Time {
	return c.meta.Date
}

// Advance moves to the next day and returns it.
func (c *Clock) Advance() time.Time {
	c.meta.Date = c.meta.Date.AddDate(0, 0, 1)
	return c.meta.Date
}

// Midnight truncates t to the start of its UTC day.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsSeasonStart reports whether d is January 1st.
func IsSeasonStart(d time.Time) bool {
	return d.YearDay() == 1
}

// IsMonthStart reports whether d is the first day of a month.
func IsMonthStart(d time.Time) bool {
	return d.Day() == 1
}
