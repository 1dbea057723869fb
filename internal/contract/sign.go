package contract

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/rng"
)

// SignDrivers fills open current-year driver slots for every team in every
// active series.
//
// Human teams use their supplied decisions; a human team without one keeps
// the slot open. AI teams pick drivers weighted toward race reputation.
// Requested terminations run first so the freed seats can be refilled.
func (e *Engine) SignDrivers(date time.Time, in *Intake) error {
	year := date.Year()
	if err := e.terminateRequested(year, in); err != nil {
		return err
	}
	for _, s := range e.tables.ActiveSeries(year) {
		rule, ok := e.tables.RuleFor(s.ID, year)
		if !ok {
			e.logger.Debug("no rule for series, skipping signing", "series", s.ID, "year", year)
			continue
		}
		for _, team := range e.tables.TeamsInSeries(s.ID, year) {
			if err := e.fillTeam(team, s, rule, year, in); err != nil {
				return err
			}
		}
	}
	return nil
}

// terminateRequested ends the contracts human teams asked to terminate.
// A request naming another team's contract, or one not running in year or
// later, is discarded.
func (e *Engine) terminateRequested(year int, in *Intake) error {
	if in == nil {
		return nil
	}
	teamIDs := lo.Keys(in.Terminate)
	slices.Sort(teamIDs)
	for _, teamID := range teamIDs {
		team, ok := e.tables.Teams[teamID]
		for _, id := range in.Terminate[teamID] {
			c, found := e.tables.DriverContracts[id]
			if !ok || !team.IsHuman() || !found || c.TeamID != teamID || !c.Active || c.EndYear < year {
				e.logger.Warn("discarding termination", "team", teamID, "contract", id, "year", year)
				continue
			}
			if _, err := e.Terminate(id, year); err != nil {
				return err
			}
		}
		delete(in.Terminate, teamID)
	}
	return nil
}

func (e *Engine) fillTeam(team *entity.Team, s *entity.Series, rule *entity.SeriesRule, year int, in *Intake) error {
	row, ok := e.Slots(year).Get(team.ID, s.ID)
	if !ok {
		return nil
	}
	for missing := row.FreeSlots(); missing > 0; missing-- {
		if team.IsHuman() {
			d, ok := in.takeDriver(team.ID)
			if !ok {
				return nil
			}
			driver, length, ok := e.validate(team, s, rule, year, d)
			if !ok {
				continue
			}
			if _, err := e.sign(driver, team, s, year, length, d.Salary, year); err != nil {
				return err
			}
			continue
		}
		signed, err := e.signAI(team, s, rule, year, year)
		if err != nil || !signed {
			return err
		}
	}
	return nil
}

// validate checks a human decision for a contract starting in start and
// returns the driver and the clamped length.
func (e *Engine) validate(team *entity.Team, s *entity.Series, rule *entity.SeriesRule, start int, d DriverDecision) (*entity.Driver, int, bool) {
	eligible := lo.ContainsBy(e.Eligible(s.ID, start), func(dr *entity.Driver) bool {
		return dr.ID == d.DriverID
	})
	if !eligible {
		e.logger.Warn("discarding decision: driver not eligible",
			"team", team.ID, "series", s.ID, "driver", d.DriverID, "year", start)
		return nil, 0, false
	}
	if d.Salary <= 0 {
		e.logger.Warn("discarding decision: salary must be positive",
			"team", team.ID, "driver", d.DriverID, "salary", d.Salary)
		return nil, 0, false
	}
	driver := e.tables.Drivers[d.DriverID]
	length := min(max(d.Length, 1), e.MaxLength(driver, rule, start))
	return driver, length, true
}

// signAI picks and signs a driver for an AI team. It reports false when no
// driver is eligible.
func (e *Engine) signAI(team *entity.Team, s *entity.Series, rule *entity.SeriesRule, start, now int) (bool, error) {
	pool := e.Eligible(s.ID, start)
	weights := lo.Map(pool, func(d *entity.Driver, _ int) int {
		return d.RaceReputation + 1
	})
	i := rng.Weighted(e.src, weights)
	if i < 0 {
		e.logger.Debug("no eligible drivers", "team", team.ID, "series", s.ID, "year", start)
		return false, nil
	}
	driver := pool[i]
	length := e.pickLength(e.MaxLength(driver, rule, start))
	if _, err := e.sign(driver, team, s, start, length, e.Salary(driver, rule), now); err != nil {
		return false, err
	}
	return true, nil
}

// pickLength draws an AI contract length and clamps it to limit.
func (e *Engine) pickLength(limit int) int {
	length := rng.Weighted(e.src, e.cfg.LengthWeights) + 1
	return max(min(length, limit), 1)
}

// sign creates an active contract starting in start. Lower-tier contracts
// of the driver overlapping the window are truncated, and the window stops
// short of any later equal-or-higher commitment. The first season is paid
// at once when it is the current season now.
func (e *Engine) sign(driver *entity.Driver, team *entity.Team, s *entity.Series, start, length, salary, now int) (*entity.DriverContract, error) {
	end := start + length - 1
	for _, c := range e.tables.DriverContractsOf(driver.ID) {
		if c.Active && c.WantedReputation >= s.Reputation && c.StartYear > start && c.StartYear <= end {
			end = c.StartYear - 1
		}
	}
	e.truncate(driver.ID, start, end, s.Reputation)

	c := &entity.DriverContract{
		DriverID:         driver.ID,
		TeamID:           team.ID,
		SeriesID:         s.ID,
		Salary:           salary,
		WantedReputation: s.Reputation,
		StartYear:        start,
		EndYear:          end,
		Active:           true,
	}
	if err := e.tables.AddDriverContract(c); err != nil {
		return nil, err
	}
	if start == now {
		team.Money -= salary
	}
	e.logger.Info("driver signed",
		"contract", c.ID,
		"driver", driver.ID,
		"team", team.ID,
		"series", s.ID,
		"start", start,
		"end", end,
		"salary", salary)
	return c, e.settle()
}

// truncate ends the driver's lower-tier contracts overlapping start..end
// before start. Contracts beginning after end are left alone.
func (e *Engine) truncate(driverID, start, end, reputation int) {
	for _, c := range e.tables.DriverContractsOf(driverID) {
		if !c.Active || c.WantedReputation >= reputation || c.EndYear < start || c.StartYear > end {
			continue
		}
		c.EndYear = start - 1
		if c.EndYear < c.StartYear {
			c.Active = false
			c.EndReason = entity.EndTruncated
		}
		e.logger.Info("contract truncated",
			"contract", c.ID, "driver", driverID, "end", c.EndYear, "active", c.Active)
	}
}

// SignAhead runs at most one speculative next-year negotiation.
//
// The chance of a negotiation grows through the year as dayOfYear over
// daysInYear. One team with a free next-year slot is picked weighted by
// reputation and a slot is reserved. A human team's decision becomes a
// pending offer that keeps the reservation; an AI team signs directly. The
// reservation is released whenever no contract or offer results.
func (e *Engine) SignAhead(date time.Time, in *Intake) error {
	year := date.Year()
	next := year + 1
	days := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
	if !rng.Chance(e.src, float64(date.YearDay())/float64(days)) {
		return nil
	}

	rows := lo.Filter(e.Slots(next).Rows(), func(row *entity.SeriesSlot, _ int) bool {
		team, ok := e.tables.Teams[row.TeamID]
		return ok && team.ActiveIn(next) && row.FreeSlots() > 0
	})
	weights := lo.Map(rows, func(row *entity.SeriesSlot, _ int) int {
		return e.tables.Teams[row.TeamID].Reputation + 1
	})
	i := rng.Weighted(e.src, weights)
	if i < 0 {
		return nil
	}
	row := rows[i]
	team := e.tables.Teams[row.TeamID]
	s, ok := e.tables.Series[row.SeriesID]
	if !ok {
		return nil
	}
	rule, ok := e.tables.RuleFor(s.ID, next)
	if !ok {
		e.logger.Debug("no rule for next season, skipping", "series", s.ID, "year", next)
		return nil
	}
	if !e.Reserve(team.ID, s.ID, next) {
		return nil
	}

	if team.IsHuman() {
		d, ok := in.takeNextYear(team.ID)
		if ok {
			if driver, length, valid := e.validate(team, s, rule, next, d); valid {
				return e.Submit(&entity.Offer{
					DriverID: driver.ID,
					TeamID:   team.ID,
					SeriesID: s.ID,
					Salary:   d.Salary,
					Length:   length,
					Year:     next,
					Reserved: true,
				})
			}
		}
		return e.release(team.ID, s.ID, next)
	}

	if err := e.release(team.ID, s.ID, next); err != nil {
		return err
	}
	_, err := e.signAI(team, s, rule, next, year)
	return err
}

func (e *Engine) release(teamID, seriesID, year int) error {
	if err := e.Release(teamID, seriesID, year); err != nil {
		return err
	}
	return e.settle()
}
