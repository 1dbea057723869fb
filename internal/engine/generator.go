package engine

import (
	"fmt"

	"github.com/roach88/paddock/internal/entity"
)

// Generator supplies the drivers and parts that become available at the
// start of a season. Records are inserted as given; a zero ID is assigned
// from the table sequence.
type Generator interface {
	NewDrivers(year int) []*entity.Driver
	NewParts(year int) []*entity.CarPart
}

func (e *Engine) intake(year int) error {
	if e.generator == nil {
		return nil
	}
	drivers := e.generator.NewDrivers(year)
	for _, d := range drivers {
		if err := e.tables.AddDriver(d); err != nil {
			return fmt.Errorf("generated driver: %w", err)
		}
	}
	parts := e.generator.NewParts(year)
	for _, p := range parts {
		if err := e.tables.AddPart(p); err != nil {
			return fmt.Errorf("generated part: %w", err)
		}
	}
	e.logger.Debug("generator intake", "year", year, "drivers", len(drivers), "parts", len(parts))
	return nil
}
