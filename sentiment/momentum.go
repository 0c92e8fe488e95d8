package sentiment

import (
	"math"

	"market-pulse/models"
)

// momentumScore blends the day's price move with the balance of new
// 52-week highs against new lows, weighted 60/40. The price component
// runs a steep slope inside +/-0.5% and a damped, clamped slope
// outside it.
func (e *Engine) momentumScore(record models.MarketRecord) float64 {
	changePct := record.Get(models.FieldChangePct, 0)

	var priceScore float64
	if math.Abs(changePct) < 0.5 {
		priceScore = changePct * 200
	} else {
		priceScore = clamp(changePct*20, -100, 100)
	}

	newHighs := record.Get(models.FieldNewHighs, 0)
	newLows := record.Get(models.FieldNewLows, 0)
	// The +1 keeps the ratio defined on days with no extremes at all.
	highsRatio := newHighs / (newHighs + newLows + 1)
	extremesScore := e.cfg.Extremes.Evaluate(highsRatio)

	return clamp(0.6*priceScore+0.4*extremesScore, -100, 100)
}
