package engine

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/race"
)

// car is the set of parts a team runs in one season.
type car struct {
	engine, chassis, tyre *entity.CarPart
}

func (c car) parts() []*entity.CarPart {
	return lo.Compact([]*entity.CarPart{c.engine, c.chassis, c.tyre})
}

func partID(p *entity.CarPart) int {
	if p == nil {
		return 0
	}
	return p.ID
}

// carOf resolves a team's part contracts to this season's parts. A
// contract runs its manufacturer's part of the race season, falling back
// to the part it was signed for. Missing part types are left nil.
func (e *Engine) carOf(team *entity.Team, seriesID, season int) car {
	var c car
	for _, pt := range entity.PartTypes {
		pc, ok := e.tables.ActivePartContract(team.ID, pt, season)
		if !ok {
			continue
		}
		part, ok := lo.Find(e.tables.PartsFor(seriesID, pt, season), func(p *entity.CarPart) bool {
			return p.ManufacturerID == pc.ManufacturerID
		})
		if !ok {
			part = e.tables.Parts[pc.PartID]
		}
		switch pt {
		case entity.PartEngine:
			c.engine = part
		case entity.PartChassis:
			c.chassis = part
		case entity.PartTyre:
			c.tyre = part
		}
	}
	return c
}

// BuildGrid assembles the entrants of a race from the active driver and
// part contracts of every team in the series.
//
// Speed is driver ability plus the power of every part. Reliability and
// Safety are failure thresholds: FailureScale over total part reliability,
// DeathScale over total part and layout safety, both scaled by wetness.
func (e *Engine) BuildGrid(r *entity.Race) []race.Entrant {
	grid := []race.Entrant{}
	for _, team := range e.tables.TeamsInSeries(r.SeriesID, r.Season) {
		contracts := e.tables.ActiveDriverContracts(team.ID, r.SeriesID, r.Season)
		if len(contracts) == 0 {
			continue
		}
		c := e.carOf(team, r.SeriesID, r.Season)
		parts := c.parts()
		power := lo.SumBy(parts, func(p *entity.CarPart) int { return p.Power })
		reliability := max(1, lo.SumBy(parts, func(p *entity.CarPart) int { return p.Reliability }))
		safety := max(1, r.Safety+lo.SumBy(parts, func(p *entity.CarPart) int { return p.Safety }))

		for _, dc := range contracts {
			d, ok := e.tables.Drivers[dc.DriverID]
			if !ok || !d.Available() {
				continue
			}
			grid = append(grid, race.Entrant{
				DriverID:    d.ID,
				TeamID:      team.ID,
				EngineID:    partID(c.engine),
				ChassisID:   partID(c.chassis),
				TyreID:      partID(c.tyre),
				Speed:       d.Ability + power,
				Reliability: e.cfg.FailureScale * r.Wetness / (entity.DryWetness * reliability),
				Safety:      e.cfg.DeathScale * r.Wetness / (entity.DryWetness * safety),
			})
		}
	}
	return grid
}

// raceDay simulates every race dated today in id order. Deaths disable
// the driver's contracts before the next race reads the tables.
func (e *Engine) raceDay(today time.Time) error {
	for _, r := range e.tables.RacesOn(today) {
		report, err := e.races.Simulate(r, e.BuildGrid(r))
		if err != nil {
			return fmt.Errorf("race %d: %w", r.ID, err)
		}
		for _, id := range report.Died {
			if d, ok := e.tables.Drivers[id]; ok {
				d.Alive = false
			}
			e.logger.Info("driver died", "driver", id, "race", r.ID)
			if err := e.contracts.DisableDriver(id, r.Season); err != nil {
				return fmt.Errorf("race %d: %w", r.ID, err)
			}
		}
		if _, err := e.standings.Apply(r, report.Results); err != nil {
			return fmt.Errorf("race %d standings: %w", r.ID, err)
		}
	}
	return nil
}
