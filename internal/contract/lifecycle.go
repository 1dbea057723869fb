package contract

import (
	"fmt"

	"github.com/roach88/paddock/internal/entity"
)

// Terminate ends a driver contract early in year. The team pays the salary
// of every remaining season, the current one included. Salary already paid
// is kept by the driver. The record stays, inactive.
func (e *Engine) Terminate(contractID, year int) (int, error) {
	c, ok := e.tables.DriverContracts[contractID]
	if !ok || !c.Active || c.EndYear < year {
		return 0, fmt.Errorf("contract %d is not active in %d", contractID, year)
	}
	remaining := c.EndYear - max(year, c.StartYear) + 1
	cost := remaining * c.Salary
	if team, ok := e.tables.Teams[c.TeamID]; ok {
		team.Money -= cost
	}
	c.Active = false
	c.EndReason = entity.EndTerminated
	e.logger.Info("contract terminated",
		"contract", c.ID, "driver", c.DriverID, "team", c.TeamID, "cost", cost)
	return cost, e.settle()
}

// DisableDriver deactivates the running and future contracts of a driver
// who died or retired in year, withdraws offers made to them and frees
// their slots. Contracts that expired earlier keep their history.
func (e *Engine) DisableDriver(driverID, year int) error {
	for _, c := range e.tables.DriverContractsOf(driverID) {
		if !c.Active || c.EndYear < year {
			continue
		}
		c.Active = false
		c.EndReason = entity.EndDisabled
		e.logger.Info("contract disabled", "contract", c.ID, "driver", driverID, "team", c.TeamID)
	}
	for _, o := range entity.Sorted(e.tables.Offers) {
		if o.DriverID != driverID {
			continue
		}
		e.tables.RemoveOffer(o.ID)
		if o.Reserved {
			if err := e.Release(o.TeamID, o.SeriesID, o.Year); err != nil {
				return err
			}
		}
	}
	return e.settle()
}

// ChargeSalaries debits each team for the season: salaries of active
// driver contracts and costs of active part contracts covering year.
// Runs once at season start, before any signing of that day.
func (e *Engine) ChargeSalaries(year int) {
	charged := make(map[int]int)
	for _, c := range entity.Sorted(e.tables.DriverContracts) {
		if c.ActiveIn(year) {
			charged[c.TeamID] += c.Salary
		}
	}
	for _, c := range entity.Sorted(e.tables.PartContracts) {
		if c.ActiveIn(year) {
			charged[c.TeamID] += c.Cost
		}
	}
	for _, id := range entity.SortedIDs(e.tables.Teams) {
		if amount := charged[id]; amount > 0 {
			e.tables.Teams[id].Money -= amount
			e.logger.Debug("season costs charged", "team", id, "year", year, "amount", amount)
		}
	}
}

// CheckDrivers verifies that no driver holds two active contracts
// covering year.
func (e *Engine) CheckDrivers(year int) error {
	holder := make(map[int]int)
	for _, c := range entity.Sorted(e.tables.DriverContracts) {
		if !c.ActiveIn(year) {
			continue
		}
		if other, ok := holder[c.DriverID]; ok {
			return entity.NewStateError(entity.ErrCodeDuplicateActiveDriver, "driver holds two active contracts",
				"driver", c.DriverID, "year", year, "contract", c.ID, "other", other)
		}
		holder[c.DriverID] = c.ID
	}
	return nil
}
