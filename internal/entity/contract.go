package entity

import "sort"

// EndReason records why a contract stopped being active.
type EndReason string

const (
	EndNone       EndReason = ""
	EndTerminated EndReason = "terminated"
	EndTruncated  EndReason = "truncated"
	EndDisabled   EndReason = "disabled"
)

// DriverContract binds a driver to a team in a series for [StartYear, EndYear].
//
// WantedReputation is the tier the contract was signed at. A series whose
// reputation does not exceed it cannot sign the driver for an overlapping year.
type DriverContract struct {
	ID               int       `json:"id"`
	DriverID         int       `json:"driver_id"`
	TeamID           int       `json:"team_id"`
	SeriesID         int       `json:"series_id"`
	Salary           int       `json:"salary"`
	WantedReputation int       `json:"wanted_reputation"`
	StartYear        int       `json:"start_year"`
	EndYear          int       `json:"end_year"`
	Active           bool      `json:"active"`
	EndReason        EndReason `json:"end_reason"`
}

// Covers reports whether year lies inside the contract window.
func (c *DriverContract) Covers(year int) bool {
	return c.StartYear <= year && year <= c.EndYear
}

// ActiveIn reports whether the contract is active and covers year.
// Expired contracts stay Active=true but drop out here.
func (c *DriverContract) ActiveIn(year int) bool {
	return c.Active && c.Covers(year)
}

// Length returns the number of seasons in the window.
func (c *DriverContract) Length() int {
	return c.EndYear - c.StartYear + 1
}

// PartContract binds a team to one manufacturer's part type in a series.
type PartContract struct {
	ID             int      `json:"id"`
	TeamID         int      `json:"team_id"`
	ManufacturerID int      `json:"manufacturer_id"`
	PartID         int      `json:"part_id"`
	PartType       PartType `json:"part_type"`
	SeriesID       int      `json:"series_id"`
	StartYear      int      `json:"start_year"`
	EndYear        int      `json:"end_year"`
	Cost           int      `json:"cost"`
	Active         bool     `json:"active"`
}

// ActiveIn reports whether the contract is active and covers year.
func (c *PartContract) ActiveIn(year int) bool {
	return c.Active && c.StartYear <= year && year <= c.EndYear
}

// Offer is a human contract offer waiting for the driver's decision.
// Reserved offers hold one reserved slot in the table of Year.
type Offer struct {
	ID       int  `json:"id"`
	DriverID int  `json:"driver_id"`
	TeamID   int  `json:"team_id"`
	SeriesID int  `json:"series_id"`
	Salary   int  `json:"salary"`
	Length   int  `json:"length"`
	Year     int  `json:"year"`
	Reserved bool `json:"reserved"`
}

// SeriesSlot is the capacity of one team in one series for one year.
type SeriesSlot struct {
	TeamID        int `json:"team_id"`
	SeriesID      int `json:"series_id"`
	Year          int `json:"year"`
	MaxSlots      int `json:"max_slots"`
	SignedSlots   int `json:"signed_slots"`
	ReservedSlots int `json:"reserved_slots"`
}

// FreeSlots is derived, never stored.
func (s *SeriesSlot) FreeSlots() int {
	return s.MaxSlots - s.SignedSlots - s.ReservedSlots
}

// SlotKey identifies a row inside a SlotTable.
type SlotKey struct {
	TeamID   int
	SeriesID int
}

// SlotTable holds every SeriesSlot for a single year.
type SlotTable struct {
	Year int
	rows map[SlotKey]*SeriesSlot
}

// NewSlotTable creates an empty table for year.
func NewSlotTable(year int) *SlotTable {
	return &SlotTable{Year: year, rows: make(map[SlotKey]*SeriesSlot)}
}

// Get returns the slot row for a team/series pair.
func (s *SlotTable) Get(teamID, seriesID int) (*SeriesSlot, bool) {
	if s == nil {
		return nil, false
	}
	row, ok := s.rows[SlotKey{TeamID: teamID, SeriesID: seriesID}]
	return row, ok
}

// Put inserts or replaces a row. The row's year is forced to the table year.
func (s *SlotTable) Put(row *SeriesSlot) {
	row.Year = s.Year
	s.rows[SlotKey{TeamID: row.TeamID, SeriesID: row.SeriesID}] = row
}

// Len returns the number of rows.
func (s *SlotTable) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rows)
}

// Rows returns all rows ordered by series id, then team id.
func (s *SlotTable) Rows() []*SeriesSlot {
	if s == nil {
		return []*SeriesSlot{}
	}
	out := make([]*SeriesSlot, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SeriesID != out[j].SeriesID {
			return out[i].SeriesID < out[j].SeriesID
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out
}
