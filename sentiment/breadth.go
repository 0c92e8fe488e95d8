package sentiment

import "market-pulse/models"

// breadthScore rates market breadth from advancing, declining, and
// unchanged issue counts. A day with no issues traded carries no
// signal and scores 0.
func (e *Engine) breadthScore(record models.MarketRecord) float64 {
	advances := record.Get(models.FieldAdvances, 0)
	declines := record.Get(models.FieldDeclines, 0)
	unchanged := record.Get(models.FieldUnchanged, 0)

	total := advances + declines + unchanged
	if total == 0 {
		return 0
	}

	advancePct := advances / total
	return clamp(e.cfg.Breadth.Evaluate(advancePct), -100, 100)
}
