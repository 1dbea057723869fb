package entity

// Snapshot is an ordered, map-free view of Tables. Two tables with the same
// content produce equal snapshots regardless of map iteration order.
type Snapshot struct {
	Drivers         []*Driver         `json:"drivers"`
	Teams           []*Team           `json:"teams"`
	Manufacturers   []*Manufacturer   `json:"manufacturers"`
	Parts           []*CarPart        `json:"parts"`
	Series          []*Series         `json:"series"`
	Rules           []SeriesRule      `json:"rules"`
	Tracks          []*Track          `json:"tracks"`
	Layouts         []*Layout         `json:"layouts"`
	DriverContracts []*DriverContract `json:"driver_contracts"`
	PartContracts   []*PartContract   `json:"part_contracts"`
	Offers          []*Offer          `json:"offers"`
	Races           []*Race           `json:"races"`
	Results         []RaceResult      `json:"results"`
	Standings       []Standing        `json:"standings"`
	CurrentSlots    *SlotSnapshot     `json:"current_slots"`
	NextSlots       *SlotSnapshot     `json:"next_slots"`
	Meta            Meta              `json:"meta"`
}

// SlotSnapshot is the content of a SlotTable.
type SlotSnapshot struct {
	Year int           `json:"year"`
	Rows []*SeriesSlot `json:"rows"`
}

func slotSnapshot(st *SlotTable) *SlotSnapshot {
	if st == nil {
		return nil
	}
	return &SlotSnapshot{Year: st.Year, Rows: st.Rows()}
}

// Snapshot returns the ordered view of t. Records are shared, not copied.
func (t *Tables) Snapshot() Snapshot {
	return Snapshot{
		Drivers:         Sorted(t.Drivers),
		Teams:           Sorted(t.Teams),
		Manufacturers:   Sorted(t.Manufacturers),
		Parts:           Sorted(t.Parts),
		Series:          Sorted(t.Series),
		Rules:           t.Rules,
		Tracks:          Sorted(t.Tracks),
		Layouts:         Sorted(t.Layouts),
		DriverContracts: Sorted(t.DriverContracts),
		PartContracts:   Sorted(t.PartContracts),
		Offers:          Sorted(t.Offers),
		Races:           Sorted(t.Races),
		Results:         t.Results,
		Standings:       t.Standings,
		CurrentSlots:    slotSnapshot(t.CurrentSlots),
		NextSlots:       slotSnapshot(t.NextSlots),
		Meta:            t.Meta,
	}
}
