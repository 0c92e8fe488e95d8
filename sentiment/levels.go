package sentiment

import "market-pulse/models"

// technicalLevels derives classic floor-trader pivot levels from the
// day's range. Without a usable high, low, and close every level
// collapses to the close. Moving averages pass through unchanged.
func (e *Engine) technicalLevels(record models.MarketRecord) models.TechnicalLevels {
	closePx := record.Get(models.FieldClose, 0)
	high := record.Get(models.FieldHigh, 0)
	low := record.Get(models.FieldLow, 0)

	levels := models.TechnicalLevels{
		MA20:  record.Get(models.FieldMA20, closePx),
		MA50:  record.Get(models.FieldMA50, closePx),
		MA200: record.Get(models.FieldMA200, closePx),
	}

	if closePx > 0 && high > 0 && low > 0 {
		pivot := (high + low + closePx) / 3
		levels.PivotPoint = pivot
		levels.ResistanceR1 = 2*pivot - low
		levels.SupportS1 = 2*pivot - high
		levels.ResistanceR2 = pivot + (high - low)
		levels.SupportS2 = pivot - (high - low)
	} else {
		levels.PivotPoint = closePx
		levels.ResistanceR1 = closePx
		levels.ResistanceR2 = closePx
		levels.SupportS1 = closePx
		levels.SupportS2 = closePx
	}

	return levels
}
