package contract

import (
	"github.com/roach88/paddock/internal/entity"
)

// Rollover promotes the next-year slot table to the current year and
// computes a fresh next-year table from rules and active contracts.
//
// When no next-year table exists yet, or it belongs to another year, both
// tables are built from scratch. Reservations carry over with the promoted
// table; pending offers still hold them.
func (e *Engine) Rollover(year int) error {
	next := e.tables.NextSlots
	if next.Len() == 0 || next.Year != year {
		e.logger.Debug("initializing slot tables", "year", year)
		e.tables.CurrentSlots = e.build(year)
	} else {
		e.tables.CurrentSlots = next
	}
	e.tables.NextSlots = e.build(year + 1)
	e.syncRows(e.tables.CurrentSlots)
	return e.settle()
}

// build creates one row per team competing in each series that has a rule
// for year. Series without a rule are skipped.
func (e *Engine) build(year int) *entity.SlotTable {
	st := entity.NewSlotTable(year)
	for _, s := range e.tables.ActiveSeries(year) {
		rule, ok := e.tables.RuleFor(s.ID, year)
		if !ok {
			e.logger.Debug("no rule for series, no slots", "series", s.ID, "year", year)
			continue
		}
		for _, team := range e.tables.TeamsInSeries(s.ID, year) {
			st.Put(&entity.SeriesSlot{TeamID: team.ID, SeriesID: s.ID, MaxSlots: rule.MaxCars})
		}
	}
	e.recount(st)
	for _, row := range st.Rows() {
		if row.SignedSlots > row.MaxSlots {
			e.logger.Info("contracts exceed new slot limit, keeping them",
				"team", row.TeamID, "series", row.SeriesID, "year", year,
				"signed", row.SignedSlots, "max", row.MaxSlots)
			row.MaxSlots = row.SignedSlots
		}
	}
	return st
}

// syncRows adds rows for teams or series that became active after the
// table was built a year ago.
func (e *Engine) syncRows(st *entity.SlotTable) {
	fresh := e.build(st.Year)
	for _, row := range fresh.Rows() {
		if _, ok := st.Get(row.TeamID, row.SeriesID); !ok {
			st.Put(row)
		}
	}
}

// recount sets SignedSlots from active contracts covering the table year.
func (e *Engine) recount(st *entity.SlotTable) {
	if st == nil {
		return
	}
	signed := make(map[entity.SlotKey]int)
	for _, c := range e.tables.DriverContracts {
		if c.ActiveIn(st.Year) {
			signed[entity.SlotKey{TeamID: c.TeamID, SeriesID: c.SeriesID}]++
		}
	}
	for _, row := range st.Rows() {
		row.SignedSlots = signed[entity.SlotKey{TeamID: row.TeamID, SeriesID: row.SeriesID}]
	}
}

// Check verifies the slot invariants of one table.
func Check(st *entity.SlotTable) error {
	for _, row := range st.Rows() {
		if row.SignedSlots < 0 || row.ReservedSlots < 0 {
			return entity.NewStateError(entity.ErrCodeNegativeSlots, "slot count below zero",
				"team", row.TeamID, "series", row.SeriesID, "year", row.Year,
				"signed", row.SignedSlots, "reserved", row.ReservedSlots)
		}
		if row.FreeSlots() < 0 {
			return entity.NewStateError(entity.ErrCodeSlotConservation, "signed and reserved slots exceed max",
				"team", row.TeamID, "series", row.SeriesID, "year", row.Year,
				"signed", row.SignedSlots, "reserved", row.ReservedSlots, "max", row.MaxSlots)
		}
	}
	return nil
}

// settle recounts and checks both live tables.
func (e *Engine) settle() error {
	for _, st := range []*entity.SlotTable{e.tables.CurrentSlots, e.tables.NextSlots} {
		e.recount(st)
		if err := Check(st); err != nil {
			return err
		}
	}
	return nil
}

// Slots returns the live table for year, or nil when year is neither the
// current nor the next season.
func (e *Engine) Slots(year int) *entity.SlotTable {
	for _, st := range []*entity.SlotTable{e.tables.CurrentSlots, e.tables.NextSlots} {
		if st != nil && st.Year == year {
			return st
		}
	}
	return nil
}

// Reserve holds one free slot of a team for year.
// It reports false when the team has no free slot.
func (e *Engine) Reserve(teamID, seriesID, year int) bool {
	row, ok := e.Slots(year).Get(teamID, seriesID)
	if !ok || row.FreeSlots() <= 0 {
		return false
	}
	row.ReservedSlots++
	return true
}

// Release returns a reserved slot. Releasing more than was reserved is a
// state error.
func (e *Engine) Release(teamID, seriesID, year int) error {
	row, ok := e.Slots(year).Get(teamID, seriesID)
	if !ok {
		return nil
	}
	row.ReservedSlots--
	if row.ReservedSlots < 0 {
		return entity.NewStateError(entity.ErrCodeNegativeSlots, "released an unreserved slot",
			"team", teamID, "series", seriesID, "year", year)
	}
	return nil
}
