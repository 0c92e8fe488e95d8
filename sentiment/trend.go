package sentiment

import "market-pulse/models"

// trendScore rates the close against its moving averages and the RSI,
// weighted 60/40. A missing average defaults to the close itself, so
// it never counts for or against the trend.
func (e *Engine) trendScore(record models.MarketRecord) float64 {
	closePx := record.Get(models.FieldClose, 0)
	rsi := record.Get(models.FieldRSI, 50)

	maCount := 0
	for _, f := range []models.Field{models.FieldMA20, models.FieldMA50, models.FieldMA200} {
		if closePx > record.Get(f, closePx) {
			maCount++
		}
	}

	var maPct float64
	if maCount > 0 {
		maScore := float64(maCount) * 30
		maPct = maScore / (float64(maCount) * 30) * 100
	}

	var rsiScore float64
	switch {
	case rsi > 70:
		rsiScore = -30 + (100-rsi)*3
	case rsi < 30:
		rsiScore = 30 + rsi*2.7
	default:
		rsiScore = (rsi - 50) * 1.2
	}

	return clamp(0.6*maPct+0.4*rsiScore, -100, 100)
}
