package entity

import (
	"slices"
	"time"

	"github.com/samber/lo"
)

// Sequence names used with Tables.NextID.
const (
	SeqDriver         = "driver"
	SeqTeam           = "team"
	SeqManufacturer   = "manufacturer"
	SeqPart           = "part"
	SeqSeries         = "series"
	SeqTrack          = "track"
	SeqLayout         = "layout"
	SeqDriverContract = "driver_contract"
	SeqPartContract   = "part_contract"
	SeqOffer          = "offer"
	SeqRace           = "race"
)

// Tables is the complete simulation state.
type Tables struct {
	Drivers         map[int]*Driver
	Teams           map[int]*Team
	Manufacturers   map[int]*Manufacturer
	Parts           map[int]*CarPart
	Series          map[int]*Series
	Rules           []SeriesRule
	Tracks          map[int]*Track
	Layouts         map[int]*Layout
	DriverContracts map[int]*DriverContract
	PartContracts   map[int]*PartContract
	Offers          map[int]*Offer
	Races           map[int]*Race
	Results         []RaceResult
	Standings       []Standing

	// CurrentSlots and NextSlots are nil until the first rollover.
	CurrentSlots *SlotTable
	NextSlots    *SlotTable

	Meta Meta
}

// NewTables returns empty tables. Empty is a valid state, not an error.
func NewTables() *Tables {
	return &Tables{
		Drivers:         make(map[int]*Driver),
		Teams:           make(map[int]*Team),
		Manufacturers:   make(map[int]*Manufacturer),
		Parts:           make(map[int]*CarPart),
		Series:          make(map[int]*Series),
		Rules:           []SeriesRule{},
		Tracks:          make(map[int]*Track),
		Layouts:         make(map[int]*Layout),
		DriverContracts: make(map[int]*DriverContract),
		PartContracts:   make(map[int]*PartContract),
		Offers:          make(map[int]*Offer),
		Races:           make(map[int]*Race),
		Results:         []RaceResult{},
		Standings:       []Standing{},
		Meta:            Meta{Sequences: make(map[string]int)},
	}
}

// Year is the simulated year of the current date.
func (t *Tables) Year() int {
	return t.Meta.Date.Year()
}

// NextID returns the next id of a sequence. Ids are strictly increasing.
func (t *Tables) NextID(seq string) int {
	if t.Meta.Sequences == nil {
		t.Meta.Sequences = make(map[string]int)
	}
	t.Meta.Sequences[seq]++
	return t.Meta.Sequences[seq]
}

// bump keeps a sequence ahead of explicitly assigned ids.
func (t *Tables) bump(seq string, id int) {
	if t.Meta.Sequences == nil {
		t.Meta.Sequences = make(map[string]int)
	}
	if id > t.Meta.Sequences[seq] {
		t.Meta.Sequences[seq] = id
	}
}

func insert[T any](t *Tables, m map[int]*T, seq string, id int, v *T) error {
	if _, exists := m[id]; exists {
		return NewStateError(ErrCodeDuplicateID, "record already exists", "table", seq, "id", id)
	}
	m[id] = v
	t.bump(seq, id)
	return nil
}

// AddDriver inserts a driver, assigning an id when ID is zero.
func (t *Tables) AddDriver(d *Driver) error {
	if d.ID == 0 {
		d.ID = t.NextID(SeqDriver)
	}
	return insert(t, t.Drivers, SeqDriver, d.ID, d)
}

// AddTeam inserts a team, assigning an id when ID is zero.
func (t *Tables) AddTeam(v *Team) error {
	if v.ID == 0 {
		v.ID = t.NextID(SeqTeam)
	}
	return insert(t, t.Teams, SeqTeam, v.ID, v)
}

// AddManufacturer inserts a manufacturer, assigning an id when ID is zero.
func (t *Tables) AddManufacturer(v *Manufacturer) error {
	if v.ID == 0 {
		v.ID = t.NextID(SeqManufacturer)
	}
	return insert(t, t.Manufacturers, SeqManufacturer, v.ID, v)
}

// AddPart inserts a car part, assigning an id when ID is zero.
func (t *Tables) AddPart(v *CarPart) error {
	if v.ID == 0 {
		v.ID = t.NextID(SeqPart)
	}
	return insert(t, t.Parts, SeqPart, v.ID, v)
}

// AddSeries inserts a series, assigning an id when ID is zero.
func (t *Tables) AddSeries(v *Series) error {
	if v.ID == 0 {
		v.ID = t.NextID(SeqSeries)
	}
	return insert(t, t.Series, SeqSeries, v.ID, v)
}

// AddTrack inserts a track, assigning an id when ID is zero.
func (t *Tables) AddTrack(v *Track) error {
	if v.ID == 0 {
		v.ID = t.NextID(SeqTrack)
	}
	return insert(t, t.Tracks, SeqTrack, v.ID, v)
}

// AddLayout inserts a layout, assigning an id when ID is zero.
func (t *Tables) AddLayout(v *Layout) error {
	if v.ID == 0 {
		v.ID = t.NextID(SeqLayout)
	}
	return insert(t, t.Layouts, SeqLayout, v.ID, v)
}

// AddDriverContract inserts a driver contract, assigning an id when ID is zero.
func (t *Tables) AddDriverContract(v *DriverContract) error {
	if v.ID == 0 {
		v.ID = t.NextID(SeqDriverContract)
	}
	return insert(t, t.DriverContracts, SeqDriverContract, v.ID, v)
}

// AddPartContract inserts a part contract, assigning an id when ID is zero.
func (t *Tables) AddPartContract(v *PartContract) error {
	if v.ID == 0 {
		v.ID = t.NextID(SeqPartContract)
	}
	return insert(t, t.PartContracts, SeqPartContract, v.ID, v)
}

// AddOffer queues a pending offer, assigning an id when ID is zero.
func (t *Tables) AddOffer(v *Offer) error {
	if v.ID == 0 {
		v.ID = t.NextID(SeqOffer)
	}
	return insert(t, t.Offers, SeqOffer, v.ID, v)
}

// RemoveOffer drops an offer from the pending queue.
func (t *Tables) RemoveOffer(id int) {
	delete(t.Offers, id)
}

// AddRace inserts a race, assigning an id when ID is zero.
func (t *Tables) AddRace(v *Race) error {
	if v.ID == 0 {
		v.ID = t.NextID(SeqRace)
	}
	return insert(t, t.Races, SeqRace, v.ID, v)
}

// SortedIDs returns the keys of an id-keyed table in ascending order.
func SortedIDs[T any](m map[int]*T) []int {
	ids := lo.Keys(m)
	slices.Sort(ids)
	return ids
}

// Sorted returns the values of an id-keyed table ordered by id.
func Sorted[T any](m map[int]*T) []*T {
	ids := SortedIDs(m)
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

// RuleFor returns the rule in force for a series in year.
// Later rows override earlier ones when ranges overlap.
func (t *Tables) RuleFor(seriesID, year int) (*SeriesRule, bool) {
	for i := len(t.Rules) - 1; i >= 0; i-- {
		r := &t.Rules[i]
		if r.SeriesID == seriesID && r.Applies(year) {
			return r, true
		}
	}
	return nil, false
}

// ActiveSeries returns the series running in year, ordered by id.
func (t *Tables) ActiveSeries(year int) []*Series {
	return lo.Filter(Sorted(t.Series), func(s *Series, _ int) bool {
		return s.ActiveIn(year)
	})
}

// TeamsInSeries returns the teams competing in a series during year.
func (t *Tables) TeamsInSeries(seriesID, year int) []*Team {
	return lo.Filter(Sorted(t.Teams), func(tm *Team, _ int) bool {
		return tm.SeriesID == seriesID && tm.ActiveIn(year)
	})
}

// DriverContractsOf returns every contract ever signed by a driver.
func (t *Tables) DriverContractsOf(driverID int) []*DriverContract {
	return lo.Filter(Sorted(t.DriverContracts), func(c *DriverContract, _ int) bool {
		return c.DriverID == driverID
	})
}

// ActiveDriverContracts returns the contracts racing for a team in a series in year.
func (t *Tables) ActiveDriverContracts(teamID, seriesID, year int) []*DriverContract {
	return lo.Filter(Sorted(t.DriverContracts), func(c *DriverContract, _ int) bool {
		return c.TeamID == teamID && c.SeriesID == seriesID && c.ActiveIn(year)
	})
}

// ActivePartContract returns the team's contract for a part type in year.
func (t *Tables) ActivePartContract(teamID int, pt PartType, year int) (*PartContract, bool) {
	return lo.Find(Sorted(t.PartContracts), func(c *PartContract) bool {
		return c.TeamID == teamID && c.PartType == pt && c.ActiveIn(year)
	})
}

// PartsFor returns the parts of a type available to a series in year.
func (t *Tables) PartsFor(seriesID int, pt PartType, year int) []*CarPart {
	return lo.Filter(Sorted(t.Parts), func(p *CarPart, _ int) bool {
		return p.SeriesID == seriesID && p.Type == pt && p.Year == year
	})
}

// LayoutsOf returns the layouts of a track.
func (t *Tables) LayoutsOf(trackID int) []*Layout {
	return lo.Filter(Sorted(t.Layouts), func(l *Layout, _ int) bool {
		return l.TrackID == trackID
	})
}

// RacesOn returns the races dated on day in listing (id) order.
func (t *Tables) RacesOn(day time.Time) []*Race {
	y, m, d := day.Date()
	return lo.Filter(Sorted(t.Races), func(r *Race, _ int) bool {
		ry, rm, rd := r.Date.Date()
		return ry == y && rm == m && rd == d
	})
}

// MaxRound returns the highest championship round recorded for a series season.
func (t *Tables) MaxRound(seriesID, season int) int {
	maxRound := 0
	for i := range t.Results {
		r := &t.Results[i]
		if r.SeriesID == seriesID && r.Season == season && r.Round > maxRound {
			maxRound = r.Round
		}
	}
	return maxRound
}

// ResultsOf returns the result rows of a race.
func (t *Tables) ResultsOf(raceID int) []RaceResult {
	return lo.Filter(t.Results, func(r RaceResult, _ int) bool {
		return r.RaceID == raceID
	})
}
