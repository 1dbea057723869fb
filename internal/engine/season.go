package engine

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/rng"
)

// startSeason runs the January 1st handler. Aging and retirement finish
// before slots roll over, and the rollover before anything is signed.
func (e *Engine) startSeason(year int) error {
	if err := e.age(year); err != nil {
		return fmt.Errorf("aging: %w", err)
	}
	if err := e.contracts.Rollover(year); err != nil {
		return fmt.Errorf("rollover: %w", err)
	}
	e.contracts.ChargeSalaries(year)

	if year >= e.cfg.ActivationYear {
		if _, err := e.scheduler.PlanSeason(year); err != nil {
			return fmt.Errorf("planning: %w", err)
		}
	}
	if err := e.developParts(year); err != nil {
		return fmt.Errorf("part development: %w", err)
	}
	e.standings.SeasonReputation(year - 1)

	if err := e.intake(year); err != nil {
		return err
	}
	e.logger.Info("season started", "year", year)
	return nil
}

// age drifts every active driver's ability and retires those past their
// retirement age.
func (e *Engine) age(year int) error {
	for _, d := range entity.Sorted(e.tables.Drivers) {
		if !d.Available() {
			continue
		}
		age := d.Age(year)
		if d.RetirementAge > 0 && age > d.RetirementAge {
			d.Retired = true
			e.logger.Info("driver retired", "driver", d.ID, "age", age)
			if err := e.contracts.DisableDriver(d.ID, year); err != nil {
				return err
			}
			continue
		}
		drift := rng.Between(e.src, 0, e.cfg.AbilityDrift)
		switch {
		case age < e.cfg.PeakAge:
			d.SetAbility(d.Ability+drift, e.cfg.AbilityMin, e.cfg.AbilityMax)
		case age > e.cfg.PeakAge:
			d.SetAbility(d.Ability-drift, e.cfg.AbilityMin, e.cfg.AbilityMax)
		}
	}
	return nil
}

// developParts derives this year's part of every manufacturer, active
// series and part type from last year's one. Parts that already exist for
// year are left alone, and manufacturers without a part last year stay out.
func (e *Engine) developParts(year int) error {
	created := 0
	for _, s := range e.tables.ActiveSeries(year) {
		rule, hasRule := e.tables.RuleFor(s.ID, year)
		for _, pt := range entity.PartTypes {
			current := e.tables.PartsFor(s.ID, pt, year)
			for _, last := range e.tables.PartsFor(s.ID, pt, year-1) {
				if lo.ContainsBy(current, func(p *entity.CarPart) bool {
					return p.ManufacturerID == last.ManufacturerID
				}) {
					continue
				}
				next := &entity.CarPart{
					ManufacturerID: last.ManufacturerID,
					Type:           pt,
					SeriesID:       s.ID,
					Year:           year,
					Power:          max(0, last.Power+e.delta()),
					Reliability:    max(1, last.Reliability+e.delta()),
					Safety:         max(1, last.Safety+e.delta()),
					Cost:           last.Cost,
				}
				if hasRule && rule.MaxPower > 0 {
					next.Power = min(max(next.Power, rule.MinPower), rule.MaxPower)
				}
				if err := e.tables.AddPart(next); err != nil {
					return err
				}
				current = append(current, next)
				created++
			}
		}
	}
	e.logger.Debug("parts developed", "year", year, "parts", created)
	return nil
}

func (e *Engine) delta() int {
	return rng.Between(e.src, -e.cfg.PartDelta, e.cfg.PartDelta)
}
