package overview

import (
	"sort"

	"market-pulse/models"
)

// Rank sorts index rows by sentiment score in descending order. Ties
// break on daily price change, then on symbol so the order is stable.
func Rank(indices []models.IndexOverview) []models.IndexOverview {
	if len(indices) == 0 {
		return indices
	}

	sort.Slice(indices, func(i, j int) bool {
		if indices[i].Score != indices[j].Score {
			return indices[i].Score > indices[j].Score
		}
		if cmp := indices[i].ChangePct.Cmp(indices[j].ChangePct); cmp != 0 {
			return cmp > 0
		}
		return indices[i].Symbol < indices[j].Symbol
	})

	return indices
}

// Summarize aggregates the per-index rows into market-wide counts and
// an average score. The average is labeled with the same classifier
// used for individual scores.
func Summarize(indices []models.IndexOverview, labelFor func(float64) string) models.OverviewSummary {
	var summary models.OverviewSummary

	if len(indices) == 0 {
		summary.AverageLabel = labelFor(0)
		return summary
	}

	total := 0.0
	for _, idx := range indices {
		total += idx.Score
		switch idx.Label {
		case models.LabelVeryBullish, models.LabelBullish:
			summary.BullishCount++
		case models.LabelVeryBearish, models.LabelBearish:
			summary.BearishCount++
		default:
			summary.NeutralCount++
		}
	}

	summary.AverageScore = total / float64(len(indices))
	summary.AverageLabel = labelFor(summary.AverageScore)
	return summary
}
