package sentiment

import "market-pulse/models"

// volumeScore rates conviction from volume relative to its 20-day
// average, signed by the day's price direction. Without an average the
// day's own volume stands in (ratio 1.0); a zero average carries no
// signal. Low relative volume scores negative regardless of direction.
func (e *Engine) volumeScore(record models.MarketRecord) float64 {
	volume := record.Get(models.FieldVolume, 0)
	volumeAvg := record.Get(models.FieldVolumeAvg20D, volume)
	if volumeAvg == 0 {
		return 0
	}

	ratio := volume / volumeAvg
	changePct := record.Get(models.FieldChangePct, 0)
	return clamp(e.cfg.Volume.Evaluate(ratio, changePct), -100, 100)
}
