package standings

import "github.com/roach88/paddock/internal/entity"

// SeasonReputation converts the final driver tables of year into each
// driver's season reputation: points scaled by the series reputation.
// Drivers who scored in several series keep their best figure; everyone
// else is reset to zero.
func (e *Engine) SeasonReputation(year int) {
	best := make(map[int]int)
	for _, s := range entity.Sorted(e.tables.Series) {
		for _, row := range e.Table(s.ID, year, entity.SubjectDriver) {
			rep := row.Points * s.Reputation / 100
			if rep > best[row.SubjectID] {
				best[row.SubjectID] = rep
			}
		}
	}
	for id, d := range e.tables.Drivers {
		d.SeasonReputation = best[id]
	}
	e.logger.Debug("season reputation updated", "year", year, "drivers", len(best))
}
