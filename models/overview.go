package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IndexOverview is one index's row in the market overview: its latest
// quote joined with its latest sentiment.
type IndexOverview struct {
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Score        float64         `json:"sentiment_score"`
	Label        string          `json:"sentiment_label"`
	Confidence   float64         `json:"confidence"`
	Last         decimal.Decimal `json:"last"`
	ChangePct    decimal.Decimal `json:"change_pct"`
	Volume       int64           `json:"volume"`
	AnalysisDate string          `json:"analysis_date"`
	Source       SnapshotSource  `json:"source"`
}

// OverviewSummary aggregates sentiment across all indices.
type OverviewSummary struct {
	BullishCount int     `json:"bullish_count"`
	BearishCount int     `json:"bearish_count"`
	NeutralCount int     `json:"neutral_count"`
	AverageScore float64 `json:"average_score"`
	AverageLabel string  `json:"average_label"`
}

// MarketOverview is the whole-market answer: every configured index
// ranked by sentiment, plus the aggregate summary.
type MarketOverview struct {
	Indices    []IndexOverview `json:"indices"`
	Summary    OverviewSummary `json:"summary"`
	MarketOpen bool            `json:"market_open"`
	Timestamp  time.Time       `json:"timestamp"`
}
