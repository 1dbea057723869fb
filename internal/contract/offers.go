package contract

import (
	"time"

	"github.com/samber/lo"

	"github.com/roach88/paddock/internal/entity"
)

// Submit queues a human offer for the driver to decide on.
//
// Offers naming unknown drivers, teams or series, or with a non-positive
// salary, are discarded with a warning and their reservation released.
func (e *Engine) Submit(o *entity.Offer) error {
	_, hasDriver := e.tables.Drivers[o.DriverID]
	_, hasTeam := e.tables.Teams[o.TeamID]
	_, hasSeries := e.tables.Series[o.SeriesID]
	if !hasDriver || !hasTeam || !hasSeries || o.Salary <= 0 {
		e.logger.Warn("discarding offer: invalid input",
			"driver", o.DriverID, "team", o.TeamID, "series", o.SeriesID, "salary", o.Salary)
		if o.Reserved {
			return e.release(o.TeamID, o.SeriesID, o.Year)
		}
		return nil
	}
	o.Length = max(o.Length, 1)
	if err := e.tables.AddOffer(o); err != nil {
		return err
	}
	e.logger.Info("offer submitted",
		"offer", o.ID, "driver", o.DriverID, "team", o.TeamID, "year", o.Year, "salary", o.Salary)
	return nil
}

// MinimumSalary is the lowest salary a driver accepts: the offer pool
// divided by the driver's reputation rank. Unranked drivers accept nothing.
func (e *Engine) MinimumSalary(driverID int) (int, bool) {
	rank := e.Rank(driverID)
	if rank == 0 {
		return 0, false
	}
	return e.cfg.OfferPool / rank, true
}

// ProcessOffers lets drivers decide every pending offer, in id order.
//
// An offer is accepted when its salary meets the driver's minimum and the
// team still has room: a free slot for an unreserved offer, or a held
// reservation with reserved+signed within max for a reserved one. Every
// processed offer leaves the queue and releases its reservation.
func (e *Engine) ProcessOffers(date time.Time) error {
	now := date.Year()
	for _, o := range entity.Sorted(e.tables.Offers) {
		e.tables.RemoveOffer(o.ID)
		reason := e.evaluate(o, now)
		if o.Reserved && o.Year >= now {
			if err := e.release(o.TeamID, o.SeriesID, o.Year); err != nil {
				return err
			}
		}
		if reason != "" {
			e.logger.Info("offer rejected", "offer", o.ID, "driver", o.DriverID, "team", o.TeamID, "reason", reason)
			continue
		}

		driver := e.tables.Drivers[o.DriverID]
		rule, _ := e.tables.RuleFor(o.SeriesID, o.Year)
		length := min(o.Length, e.MaxLength(driver, rule, o.Year))
		c, err := e.sign(driver, e.tables.Teams[o.TeamID], e.tables.Series[o.SeriesID], o.Year, length, o.Salary, now)
		if err != nil {
			return err
		}
		e.logger.Info("offer accepted", "offer", o.ID, "contract", c.ID)
	}
	return nil
}

// evaluate returns why an offer is rejected, or "" to accept it.
func (e *Engine) evaluate(o *entity.Offer, now int) string {
	if o.Year < now {
		return "expired"
	}
	team, ok := e.tables.Teams[o.TeamID]
	if !ok || team.SeriesID != o.SeriesID {
		return "team not in series"
	}
	if _, ok := e.tables.RuleFor(o.SeriesID, o.Year); !ok {
		return "no rule for season"
	}
	row, ok := e.Slots(o.Year).Get(o.TeamID, o.SeriesID)
	if !ok {
		return "no slot row"
	}
	eligible := lo.ContainsBy(e.Eligible(o.SeriesID, o.Year), func(d *entity.Driver) bool {
		return d.ID == o.DriverID
	})
	if !eligible {
		return "driver not eligible"
	}
	minimum, ok := e.MinimumSalary(o.DriverID)
	if !ok || o.Salary < minimum {
		return "salary below demand"
	}
	if o.Reserved {
		if row.ReservedSlots <= 0 || row.ReservedSlots+row.SignedSlots > row.MaxSlots {
			return "reservation lost"
		}
	} else if row.FreeSlots() <= 0 {
		return "no open slot"
	}
	return ""
}
