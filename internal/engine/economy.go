package engine

import "github.com/roach88/paddock/internal/entity"

// checkDebt hands every team in debt to the AI and resets its balance.
func (e *Engine) checkDebt() {
	for _, team := range entity.Sorted(e.tables.Teams) {
		if team.Money >= 0 {
			continue
		}
		e.logger.Warn("team bankrupt, taken over",
			"team", team.ID,
			"owner", team.OwnerID,
			"money", team.Money)
		team.OwnerID = entity.AIOwner
		team.Money = e.cfg.DebtReset
	}
}
