package sentiment

import "market-pulse/models"

// confidence estimates how complete the input record is: eight core
// indicators are checked and each present, non-trivial value adds 1/8.
// This is a completeness heuristic, not a statistical interval.
func (e *Engine) confidence(record models.MarketRecord) float64 {
	signals := []bool{
		record.Get(models.FieldAdvances, 0) > 0,
		record.Get(models.FieldChangePct, 0) != 0,
		record.Get(models.FieldRSI, 0) != 0,
		record.Get(models.FieldMACD, 0) != 0,
		record.Get(models.FieldVolume, 0) > 0,
		record.Get(models.FieldMA20, 0) != 0,
		record.Get(models.FieldMA50, 0) != 0,
		record.Get(models.FieldMA200, 0) != 0,
	}

	count := 0
	for _, present := range signals {
		if present {
			count++
		}
	}
	return clamp(float64(count)/float64(len(signals)), 0, 1)
}
