package contract

import "github.com/roach88/paddock/internal/entity"

// DriverDecision is a human team's choice for one driver slot.
type DriverDecision struct {
	DriverID int `yaml:"driver" json:"driver"`
	Salary   int `yaml:"salary" json:"salary"`
	Length   int `yaml:"length" json:"length"`
}

// PartDecision is a human team's choice of supplier for one part type.
type PartDecision struct {
	PartID int `yaml:"part" json:"part"`
	Length int `yaml:"length" json:"length"`
}

// Intake carries human decisions keyed by team id.
//
// Drivers fill current-year slots, NextYear answers speculative next-year
// negotiations and Parts fill part contracts. Terminate lists driver
// contract ids the team ends before signing. Each decision is used at most
// once. A team without an entry has not decided yet, and its slot stays
// open; AI selection never stands in for a human team.
type Intake struct {
	Drivers   map[int][]DriverDecision `yaml:"drivers" json:"drivers"`
	NextYear  map[int][]DriverDecision `yaml:"next_year" json:"next_year"`
	Parts     map[int][]PartDecision   `yaml:"parts" json:"parts"`
	Terminate map[int][]int            `yaml:"terminate" json:"terminate"`
}

// Empty reports whether no decision is pending.
func (in *Intake) Empty() bool {
	if in == nil {
		return true
	}
	return countAll(in.Drivers) == 0 && countAll(in.NextYear) == 0 &&
		countAll(in.Parts) == 0 && countAll(in.Terminate) == 0
}

func countAll[T any](m map[int][]T) int {
	n := 0
	for _, list := range m {
		n += len(list)
	}
	return n
}

func (in *Intake) takeDriver(teamID int) (DriverDecision, bool) {
	if in == nil {
		return DriverDecision{}, false
	}
	return take(in.Drivers, teamID)
}

func (in *Intake) takeNextYear(teamID int) (DriverDecision, bool) {
	if in == nil {
		return DriverDecision{}, false
	}
	return take(in.NextYear, teamID)
}

// takePart pops the team's first decision for part type pt. Decisions
// naming an unknown part match any type so validation can discard them.
func (in *Intake) takePart(teamID int, pt entity.PartType, parts map[int]*entity.CarPart) (PartDecision, bool) {
	if in == nil {
		return PartDecision{}, false
	}
	list := in.Parts[teamID]
	for i, d := range list {
		if p, ok := parts[d.PartID]; !ok || p.Type == pt {
			in.Parts[teamID] = append(list[:i:i], list[i+1:]...)
			return d, true
		}
	}
	return PartDecision{}, false
}

func take[T any](m map[int][]T, teamID int) (T, bool) {
	var zero T
	list := m[teamID]
	if len(list) == 0 {
		return zero, false
	}
	m[teamID] = list[1:]
	return list[0], true
}
