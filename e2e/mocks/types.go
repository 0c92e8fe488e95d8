package mocks

// ReferenceData is the gateway's single-day reference payload. Field
// values are strings on the wire, keyed by gateway field identifier.
type ReferenceData struct {
	Ticker string            `json:"ticker"`
	Date   string            `json:"date"`
	Fields map[string]string `json:"fields"`
}

// HistoryBar is one daily close in the gateway's history payload.
type HistoryBar struct {
	Date  string `json:"date"`
	Close string `json:"PX_LAST"`
}

// HistoryData is the gateway's historical bars payload.
type HistoryData struct {
	Ticker string       `json:"ticker"`
	Bars   []HistoryBar `json:"bars"`
}

// SnapshotQuote is one index quote in the gateway's snapshot payload.
type SnapshotQuote struct {
	Ticker    string `json:"ticker"`
	Last      string `json:"PX_LAST"`
	ChangePct string `json:"CHG_PCT_1D"`
	Volume    string `json:"VOLUME"`
}

// SnapshotData is the gateway's multi-index snapshot payload.
type SnapshotData struct {
	Quotes []SnapshotQuote `json:"quotes"`
}

// BullishReferenceFields returns reference data for a broadly positive
// session: strong breadth, RSI in the low 60s, price above its open.
func BullishReferenceFields() map[string]string {
	return map[string]string{
		"PX_LAST":               "13450.25",
		"PX_HIGH":               "13480.00",
		"PX_LOW":                "13390.50",
		"PX_OPEN":               "13400.00",
		"VOLUME":                "2150000",
		"ADVANCING_ISSUES":      "45",
		"DECLINING_ISSUES":      "18",
		"UNCHANGED_ISSUES":      "12",
		"TOT_TRADED_ISSUES":     "75",
		"NEW_HIGH_52W":          "8",
		"NEW_LOW_52W":           "2",
		"RSI_14D":               "61.4",
		"MACD":                  "12.30",
		"MACD_SIGNAL":           "8.10",
		"STOCHASTIC_OSCILLATOR": "72.5",
		"EQY_WEIGHTED_AVG_PX":   "13432.10",
	}
}

// BearishReferenceFields returns reference data for a broad selloff:
// decliners dominate, RSI below 40, price under its open.
func BearishReferenceFields() map[string]string {
	return map[string]string{
		"PX_LAST":               "13120.80",
		"PX_HIGH":               "13410.00",
		"PX_LOW":                "13095.30",
		"PX_OPEN":               "13400.00",
		"VOLUME":                "2980000",
		"ADVANCING_ISSUES":      "11",
		"DECLINING_ISSUES":      "52",
		"UNCHANGED_ISSUES":      "12",
		"TOT_TRADED_ISSUES":     "75",
		"NEW_HIGH_52W":          "1",
		"NEW_LOW_52W":           "9",
		"RSI_14D":               "36.2",
		"MACD":                  "-14.70",
		"MACD_SIGNAL":           "-6.20",
		"STOCHASTIC_OSCILLATOR": "22.1",
		"EQY_WEIGHTED_AVG_PX":   "13228.40",
	}
}
