package models

import (
	"time"

	"github.com/google/uuid"
)

// SnapshotSource identifies which provider supplied the record behind
// a snapshot.
type SnapshotSource string

const (
	SourceTerminal  SnapshotSource = "terminal"
	SourceHistory   SnapshotSource = "history"
	SourceSynthetic SnapshotSource = "synthetic"
	SourceCache     SnapshotSource = "cache"
)

// SentimentSnapshot is a persisted sentiment result for one index and
// one analysis date.
type SentimentSnapshot struct {
	ID           uuid.UUID       `json:"id"`
	Symbol       string          `json:"symbol"`
	AnalysisDate string          `json:"analysis_date"`
	Result       SentimentResult `json:"result"`
	Source       SnapshotSource  `json:"source"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewSentimentSnapshot wraps a result for persistence.
func NewSentimentSnapshot(symbol string, source SnapshotSource, result SentimentResult) *SentimentSnapshot {
	return &SentimentSnapshot{
		ID:           uuid.New(),
		Symbol:       symbol,
		AnalysisDate: result.AnalysisDate,
		Result:       result,
		Source:       source,
		CreatedAt:    time.Now(),
	}
}
