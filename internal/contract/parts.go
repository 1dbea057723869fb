package contract

import (
	"time"

	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/rng"
)

// SignParts gives every team in every active series a contract for each
// part type it lacks.
//
// Human teams commit directly to the part they chose; without a decision
// the part stays unsigned. AI teams pick uniformly among the parts offered
// to the series that year and sign for MinPartTerm..MaxPartTerm seasons.
func (e *Engine) SignParts(date time.Time, in *Intake) error {
	year := date.Year()
	for _, s := range e.tables.ActiveSeries(year) {
		if _, ok := e.tables.RuleFor(s.ID, year); !ok {
			continue
		}
		for _, team := range e.tables.TeamsInSeries(s.ID, year) {
			for _, pt := range entity.PartTypes {
				if _, ok := e.tables.ActivePartContract(team.ID, pt, year); ok {
					continue
				}
				part, length, ok := e.choosePart(team, s, pt, year, in)
				if !ok {
					continue
				}
				if err := e.signPart(team, part, year, length); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (e *Engine) choosePart(team *entity.Team, s *entity.Series, pt entity.PartType, year int, in *Intake) (*entity.CarPart, int, bool) {
	if team.IsHuman() {
		d, ok := in.takePart(team.ID, pt, e.tables.Parts)
		if !ok {
			return nil, 0, false
		}
		part, ok := e.tables.Parts[d.PartID]
		if !ok || part.SeriesID != s.ID || part.Year != year {
			e.logger.Warn("discarding part decision: part not offered",
				"team", team.ID, "series", s.ID, "part", d.PartID, "year", year)
			return nil, 0, false
		}
		return part, min(max(d.Length, 1), e.cfg.MaxPartTerm), true
	}

	part, ok := rng.Pick(e.src, e.tables.PartsFor(s.ID, pt, year))
	if !ok {
		e.logger.Debug("no parts offered", "team", team.ID, "series", s.ID, "type", pt, "year", year)
		return nil, 0, false
	}
	return part, rng.Between(e.src, e.cfg.MinPartTerm, e.cfg.MaxPartTerm), true
}

// signPart records a part contract and charges its first season.
func (e *Engine) signPart(team *entity.Team, part *entity.CarPart, year, length int) error {
	c := &entity.PartContract{
		TeamID:         team.ID,
		ManufacturerID: part.ManufacturerID,
		PartID:         part.ID,
		PartType:       part.Type,
		SeriesID:       part.SeriesID,
		StartYear:      year,
		EndYear:        year + length - 1,
		Cost:           part.Cost,
		Active:         true,
	}
	if err := e.tables.AddPartContract(c); err != nil {
		return err
	}
	team.Money -= c.Cost
	e.logger.Info("part signed",
		"contract", c.ID,
		"team", team.ID,
		"manufacturer", part.ManufacturerID,
		"type", part.Type,
		"end", c.EndYear)
	return nil
}
