package entity

import "time"

// Series is a racing championship.
type Series struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Reputation int    `json:"reputation"`
	FirstYear  int    `json:"first_year"`
	LastYear   int    `json:"last_year"`
}

// ActiveIn reports whether the series runs during year.
func (s *Series) ActiveIn(year int) bool {
	if s.FirstYear > year {
		return false
	}
	return s.LastYear == 0 || s.LastYear >= year
}

// SeriesRule is the regulation set of a series for a range of years.
// ToYear == 0 leaves the range open.
type SeriesRule struct {
	SeriesID             int   `json:"series_id"`
	FromYear             int   `json:"from_year"`
	ToYear               int   `json:"to_year"`
	MaxCars              int   `json:"max_cars"`
	MinAge               int   `json:"min_age"`
	MaxAge               int   `json:"max_age"`
	ChampionshipRaces    int   `json:"championship_races"`
	NonChampionshipRaces int   `json:"non_championship_races"`
	PointSystem          []int `json:"point_system"`
	MinPower             int   `json:"min_power"`
	MaxPower             int   `json:"max_power"`
	BaseSalary           int   `json:"base_salary"`
	RaceReward           int   `json:"race_reward"`
}

// Applies reports whether the rule is in force during year.
func (r *SeriesRule) Applies(year int) bool {
	if r.FromYear > year {
		return false
	}
	return r.ToYear == 0 || r.ToYear >= year
}

// Points returns the points paid for a finishing position.
// Positions past the end of the point system, and sentinels, pay nothing.
func (r *SeriesRule) Points(position int) int {
	if position < 1 || position > len(r.PointSystem) {
		return 0
	}
	return r.PointSystem[position-1]
}

// Track is a racing venue.
type Track struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Layout is one configuration of a track.
type Layout struct {
	ID      int    `json:"id"`
	TrackID int    `json:"track_id"`
	Name    string `json:"name"`
	Safety  int    `json:"safety"`
}

// Meta carries run-level state that is persisted with the tables.
type Meta struct {
	RunID     string         `json:"run_id"`
	Seed      int64          `json:"seed"`
	Date      time.Time      `json:"date"`
	Sequences map[string]int `json:"sequences"`
}
