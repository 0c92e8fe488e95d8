package models

import "time"

// Default sentiment labels, most bullish first.
const (
	LabelVeryBullish = "Very Bullish"
	LabelBullish     = "Bullish"
	LabelNeutral     = "Neutral"
	LabelBearish     = "Bearish"
	LabelVeryBearish = "Very Bearish"
)

// ComponentScores breaks the overall sentiment score into its four
// weighted parts. Each lies in [-100, 100].
type ComponentScores struct {
	Breadth  float64 `json:"breadth_score"`
	Momentum float64 `json:"momentum_score"`
	Trend    float64 `json:"trend_score"`
	Volume   float64 `json:"volume_score"`
}

// TechnicalLevels holds the floor-trader pivot levels and the moving
// averages for the analyzed day.
type TechnicalLevels struct {
	PivotPoint   float64 `json:"pivot_point"`
	ResistanceR1 float64 `json:"resistance_r1"`
	ResistanceR2 float64 `json:"resistance_r2"`
	SupportS1    float64 `json:"support_s1"`
	SupportS2    float64 `json:"support_s2"`
	MA20         float64 `json:"ma_20"`
	MA50         float64 `json:"ma_50"`
	MA200        float64 `json:"ma_200"`
}

// SentimentResult is the full output of one scoring run. It is created
// fresh per call and never mutated afterwards.
type SentimentResult struct {
	Score        float64         `json:"sentiment_score"`
	Label        string          `json:"sentiment_label"`
	Components   ComponentScores `json:"components"`
	Levels       TechnicalLevels `json:"technical_levels"`
	Confidence   float64         `json:"confidence"`
	Timestamp    time.Time       `json:"timestamp"`
	AnalysisDate string          `json:"analysis_date"`
}
