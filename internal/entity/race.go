package entity

import "time"

// Sentinel finishing codes. Both lie outside any valid 1-based position.
const (
	PositionCrashed = -1
	PositionDied    = -2
)

// Race is one scheduled event. Races are immutable once planned.
// Wetness is a percentage multiplier; DryWetness means dry.
type Race struct {
	ID               int       `json:"id"`
	SeriesID         int       `json:"series_id"`
	Season           int       `json:"season"`
	TrackID          int       `json:"track_id"`
	LayoutID         int       `json:"layout_id"`
	Date             time.Time `json:"date"`
	Championship     bool      `json:"championship"`
	ReputationWeight int       `json:"reputation_weight"`
	Reward           int       `json:"reward"`
	Wetness          int       `json:"wetness"`
	Safety           int       `json:"safety"`
}

// DryWetness is the wetness of a dry race. Grid building scales failure
// thresholds by Wetness/DryWetness.
const DryWetness = 100

// IsWet reports whether the race runs in wet conditions.
func (r *Race) IsWet() bool {
	return r.Wetness > DryWetness
}

// RaceResult is one entrant's outcome in one race.
type RaceResult struct {
	RaceID    int `json:"race_id"`
	SeriesID  int `json:"series_id"`
	Season    int `json:"season"`
	Round     int `json:"round"`
	DriverID  int `json:"driver_id"`
	TeamID    int `json:"team_id"`
	EngineID  int `json:"engine_id"`
	ChassisID int `json:"chassis_id"`
	TyreID    int `json:"tyre_id"`
	Position  int `json:"position"`
}

// Finished reports whether the entrant took the flag.
func (r *RaceResult) Finished() bool {
	return r.Position >= 1
}

// SubjectID returns the id of the subject of type st in this row.
// Part subjects are CarPart ids; a part exists once per manufacturer,
// series and year, so within a season it stands for its supplier.
func (r *RaceResult) SubjectID(st SubjectType) int {
	switch st {
	case SubjectDriver:
		return r.DriverID
	case SubjectTeam:
		return r.TeamID
	case SubjectEngine:
		return r.EngineID
	case SubjectChassis:
		return r.ChassisID
	case SubjectTyre:
		return r.TyreID
	}
	return 0
}

// SubjectType names a championship classification.
type SubjectType string

const (
	SubjectDriver  SubjectType = "driver"
	SubjectTeam    SubjectType = "team"
	SubjectEngine  SubjectType = "engine"
	SubjectChassis SubjectType = "chassis"
	SubjectTyre    SubjectType = "tyre"
)

// SubjectTypes lists classifications in processing order.
var SubjectTypes = []SubjectType{SubjectDriver, SubjectTeam, SubjectEngine, SubjectChassis, SubjectTyre}

// SubjectForPart maps a part type to its classification.
func SubjectForPart(pt PartType) SubjectType {
	return SubjectType(pt)
}

// Standing is a subject's cumulative position after one championship round.
type Standing struct {
	SeriesID    int         `json:"series_id"`
	Year        int         `json:"year"`
	SubjectType SubjectType `json:"subject_type"`
	SubjectID   int         `json:"subject_id"`
	Round       int         `json:"round"`
	Points      int         `json:"points"`
	Position    int         `json:"position"`
}
