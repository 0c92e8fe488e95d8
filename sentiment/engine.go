package sentiment

import (
	"math"
	"time"

	"market-pulse/models"
	"market-pulse/observability"
)

const dateLayout = "2006-01-02"

// Engine scores one day of raw market statistics. It holds no mutable
// state and is safe for concurrent use from any number of goroutines.
type Engine struct {
	cfg *Config
	now func() time.Time
}

// NewEngine creates an engine. A nil config selects the defaults.
func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg, now: time.Now}
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.cfg
}

// Calculate scores a market record for the given analysis date
// (YYYY-MM-DD, today when empty). It never fails the caller: a fault
// anywhere in the pipeline yields the neutral result instead.
func (e *Engine) Calculate(record models.MarketRecord, analysisDate string) (result models.SentimentResult) {
	ts := e.now()
	if analysisDate == "" {
		analysisDate = ts.Format(dateLayout)
	}

	defer func() {
		if r := recover(); r != nil {
			observability.Error("sentiment calculation failed, returning neutral result",
				"analysis_date", analysisDate,
				"panic", r)
			result = e.neutralResult(ts, analysisDate)
		}
	}()

	components := models.ComponentScores{
		Breadth:  e.breadthScore(record),
		Momentum: e.momentumScore(record),
		Trend:    e.trendScore(record),
		Volume:   e.volumeScore(record),
	}

	overall := components.Breadth*e.cfg.Weights.Breadth +
		components.Momentum*e.cfg.Weights.Momentum +
		components.Trend*e.cfg.Weights.Trend +
		components.Volume*e.cfg.Weights.Volume
	overall = clamp(overall, -100, 100)

	return models.SentimentResult{
		Score:        overall,
		Label:        e.cfg.LabelFor(overall),
		Components:   components,
		Levels:       e.technicalLevels(record),
		Confidence:   e.confidence(record),
		Timestamp:    ts,
		AnalysisDate: analysisDate,
	}
}

// neutralResult is the degraded-but-present fallback: zero scores and
// levels, zero confidence, the label a zero score classifies to.
func (e *Engine) neutralResult(ts time.Time, analysisDate string) models.SentimentResult {
	return models.SentimentResult{
		Label:        e.cfg.LabelFor(0),
		Timestamp:    ts,
		AnalysisDate: analysisDate,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
