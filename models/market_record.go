package models

import "math"

// Field names one numeric statistic in a MarketRecord.
type Field string

// Fields a data source may supply for one trading day.
const (
	FieldOpen         Field = "open"
	FieldHigh         Field = "high"
	FieldLow          Field = "low"
	FieldClose        Field = "close"
	FieldVolume       Field = "volume"
	FieldVolumeAvg20D Field = "volume_avg_20d"
	FieldAdvances     Field = "advances"
	FieldDeclines     Field = "declines"
	FieldUnchanged    Field = "unchanged"
	FieldTotalIssues  Field = "total_issues"
	FieldNewHighs     Field = "new_highs"
	FieldNewLows      Field = "new_lows"
	FieldRSI          Field = "rsi"
	FieldMACD         Field = "macd"
	FieldMACDSignal   Field = "macd_signal"
	FieldStochastic   Field = "stochastic"
	FieldVWAP         Field = "vwap"
	FieldMA20         Field = "ma_20"
	FieldMA50         Field = "ma_50"
	FieldMA200        Field = "ma_200"
	FieldChangePct    Field = "change_pct"
)

// AllFields lists every known field in canonical order. The history
// store uses it as its column schema.
var AllFields = []Field{
	FieldOpen, FieldHigh, FieldLow, FieldClose,
	FieldVolume, FieldVolumeAvg20D,
	FieldAdvances, FieldDeclines, FieldUnchanged, FieldTotalIssues,
	FieldNewHighs, FieldNewLows,
	FieldRSI, FieldMACD, FieldMACDSignal, FieldStochastic, FieldVWAP,
	FieldMA20, FieldMA50, FieldMA200,
	FieldChangePct,
}

// MarketRecord holds the raw daily statistics for one index on one
// trading day. Any field may be absent; readers supply a default via
// Get rather than treating absence as an error.
type MarketRecord map[Field]float64

// NewMarketRecord returns an empty record ready for Set.
func NewMarketRecord() MarketRecord {
	return make(MarketRecord)
}

// Get returns the field value, or def when the field is absent or not
// a finite number.
func (r MarketRecord) Get(f Field, def float64) float64 {
	v, ok := r[f]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// Set stores a field value. Non-finite values are dropped so the
// record always marshals cleanly.
func (r MarketRecord) Set(f Field, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	r[f] = v
}

// Has reports whether the field carries a usable value.
func (r MarketRecord) Has(f Field) bool {
	v, ok := r[f]
	return ok && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Clone returns an independent copy of the record.
func (r MarketRecord) Clone() MarketRecord {
	out := make(MarketRecord, len(r))
	for f, v := range r {
		out[f] = v
	}
	return out
}

// DeriveChangePct fills change_pct from open and close when the source
// did not supply it. A zero open yields zero change.
func (r MarketRecord) DeriveChangePct() {
	if r.Has(FieldChangePct) {
		return
	}
	openPx := r.Get(FieldOpen, 0)
	if openPx == 0 {
		r.Set(FieldChangePct, 0)
		return
	}
	closePx := r.Get(FieldClose, 0)
	r.Set(FieldChangePct, (closePx-openPx)/openPx*100)
}
