package contract

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"

	"github.com/roach88/paddock/internal/entity"
)

// committed returns the drivers bound for year to a series at least as
// reputable as reputation.
func (e *Engine) committed(year, reputation int) mapset.Set[int] {
	ids := mapset.NewThreadUnsafeSet[int]()
	for _, c := range e.tables.DriverContracts {
		if c.ActiveIn(year) && c.WantedReputation >= reputation {
			ids.Add(c.DriverID)
		}
	}
	return ids
}

// Eligible returns the drivers a series may sign for year, ordered by id.
//
// Dead and retired drivers, drivers outside the series age window, and
// drivers already committed to an equal or higher tier that year are
// excluded. A series without a rule for year has no eligible drivers.
func (e *Engine) Eligible(seriesID, year int) []*entity.Driver {
	series, ok := e.tables.Series[seriesID]
	if !ok {
		return []*entity.Driver{}
	}
	rule, ok := e.tables.RuleFor(seriesID, year)
	if !ok {
		return []*entity.Driver{}
	}
	taken := e.committed(year, series.Reputation)
	return lo.Filter(entity.Sorted(e.tables.Drivers), func(d *entity.Driver, _ int) bool {
		if !d.Available() || taken.Contains(d.ID) {
			return false
		}
		age := d.Age(year)
		if age < rule.MinAge {
			return false
		}
		return rule.MaxAge == 0 || age <= rule.MaxAge
	})
}

// MaxLength is the longest contract a driver can sign starting in year:
// the seasons left before the series age limit, capped by the engine
// maximum and never below one.
func (e *Engine) MaxLength(d *entity.Driver, rule *entity.SeriesRule, year int) int {
	limit := e.cfg.MaxLength()
	if rule.MaxAge > 0 {
		limit = min(limit, rule.MaxAge-d.Age(year)+1)
	}
	return max(limit, 1)
}

// Salary is the pay an AI team offers a driver in a series.
func (e *Engine) Salary(d *entity.Driver, rule *entity.SeriesRule) int {
	return rule.BaseSalary + d.RaceReputation*e.cfg.SalaryFactor
}

// Rank returns a driver's 1-based position among active drivers by race
// reputation, ties broken by id. Active drivers are available and inside
// the age range some series of the current season accepts. Unavailable
// drivers rank 0.
func (e *Engine) Rank(driverID int) int {
	target, ok := e.tables.Drivers[driverID]
	if !ok || !target.Available() {
		return 0
	}
	year := e.tables.Year()
	youngest, oldest, bounded := e.ageRange(year)
	rank := 1
	for _, d := range e.tables.Drivers {
		if !d.Available() || d.ID == driverID {
			continue
		}
		if bounded && (d.Age(year) < youngest || (oldest > 0 && d.Age(year) > oldest)) {
			continue
		}
		if d.RaceReputation > target.RaceReputation ||
			(d.RaceReputation == target.RaceReputation && d.ID < target.ID) {
			rank++
		}
	}
	return rank
}

// ageRange spans the age windows of the series running in year. An oldest
// age of 0 means no upper limit; bounded is false when no rule applies.
func (e *Engine) ageRange(year int) (youngest, oldest int, bounded bool) {
	for _, s := range e.tables.ActiveSeries(year) {
		rule, ok := e.tables.RuleFor(s.ID, year)
		if !ok {
			continue
		}
		if !bounded {
			youngest, oldest, bounded = rule.MinAge, rule.MaxAge, true
			continue
		}
		youngest = min(youngest, rule.MinAge)
		if oldest > 0 && (rule.MaxAge == 0 || rule.MaxAge > oldest) {
			oldest = rule.MaxAge
		}
	}
	return youngest, oldest, bounded
}
