package entity

// Driver is a single racing driver. Drivers are never deleted; death and
// retirement only flip flags.
type Driver struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	BirthYear        int    `json:"birth_year"`
	Ability          int    `json:"ability"`
	OriginalAbility  int    `json:"original_ability"`
	BestAbility      int    `json:"best_ability"`
	Alive            bool   `json:"alive"`
	Retired          bool   `json:"retired"`
	RetirementAge    int    `json:"retirement_age"`
	RaceReputation   int    `json:"race_reputation"`
	SeasonReputation int    `json:"season_reputation"`
}

// Age returns the driver's age during the given year.
func (d *Driver) Age(year int) int {
	return year - d.BirthYear
}

// Available reports whether the driver can still be signed at all.
// Age bounds are series specific and checked by the contract engine.
func (d *Driver) Available() bool {
	return d.Alive && !d.Retired
}

// SetAbility stores ability clamped to [lo, hi] and tracks the best value.
func (d *Driver) SetAbility(v, lo, hi int) {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	d.Ability = v
	if v > d.BestAbility {
		d.BestAbility = v
	}
}

// AIOwner marks a team without a human owner.
const AIOwner = 0

// Team is a racing team competing in one series.
type Team struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	OwnerID      int    `json:"owner_id"`
	SeriesID     int    `json:"series_id"`
	Money        int    `json:"money"`
	Reputation   int    `json:"reputation"`
	FinanceStaff int    `json:"finance_staff"`
	DesignStaff  int    `json:"design_staff"`
	FoundedYear  int    `json:"founded_year"`
	FoldedYear   int    `json:"folded_year"`
}

// IsHuman reports whether a player owns the team.
func (t *Team) IsHuman() bool {
	return t.OwnerID != AIOwner
}

// ActiveIn reports whether the team exists during year.
func (t *Team) ActiveIn(year int) bool {
	if t.FoundedYear > year {
		return false
	}
	return t.FoldedYear == 0 || t.FoldedYear > year
}

// Manufacturer builds car parts for one or more series.
type Manufacturer struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Reputation int    `json:"reputation"`
}

// PartType is the kind of part a manufacturer supplies.
type PartType string

const (
	PartEngine  PartType = "engine"
	PartChassis PartType = "chassis"
	PartTyre    PartType = "tyre"
)

// PartTypes lists part types in their fixed processing order.
var PartTypes = []PartType{PartEngine, PartChassis, PartTyre}

// CarPart is one year's version of a manufacturer's part for a series.
type CarPart struct {
	ID             int      `json:"id"`
	ManufacturerID int      `json:"manufacturer_id"`
	Type           PartType `json:"type"`
	SeriesID       int      `json:"series_id"`
	Year           int      `json:"year"`
	Power          int      `json:"power"`
	Reliability    int      `json:"reliability"`
	Safety         int      `json:"safety"`
	Cost           int      `json:"cost"`
}
