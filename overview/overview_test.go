package overview

import (
	"testing"

	"github.com/shopspring/decimal"

	"market-pulse/models"
	"market-pulse/sentiment"
)

func row(symbol string, score float64, label string, changePct string) models.IndexOverview {
	return models.IndexOverview{
		Symbol:    symbol,
		Score:     score,
		Label:     label,
		ChangePct: decimal.RequireFromString(changePct),
	}
}

func TestRank(t *testing.T) {
	t.Run("by score descending", func(t *testing.T) {
		indices := []models.IndexOverview{
			row("CBI", -12.0, models.LabelNeutral, "0.10"),
			row("MASI", 45.5, models.LabelBullish, "0.80"),
			row("MADEX", 20.0, models.LabelNeutral, "0.30"),
		}

		ranked := Rank(indices)

		want := []string{"MASI", "MADEX", "CBI"}
		for i, symbol := range want {
			if ranked[i].Symbol != symbol {
				t.Errorf("ranked[%d] = %s, want %s", i, ranked[i].Symbol, symbol)
			}
		}
	})

	t.Run("price change breaks score ties", func(t *testing.T) {
		indices := []models.IndexOverview{
			row("MSI20", 30.0, models.LabelBullish, "-0.20"),
			row("MASI", 30.0, models.LabelBullish, "0.55"),
		}

		ranked := Rank(indices)

		if ranked[0].Symbol != "MASI" {
			t.Errorf("expected MASI first on price change, got %s", ranked[0].Symbol)
		}
	})

	t.Run("symbol breaks full ties", func(t *testing.T) {
		indices := []models.IndexOverview{
			row("IAI", 0, models.LabelNeutral, "0"),
			row("CBI", 0, models.LabelNeutral, "0"),
		}

		ranked := Rank(indices)

		if ranked[0].Symbol != "CBI" {
			t.Errorf("expected CBI first alphabetically, got %s", ranked[0].Symbol)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if ranked := Rank(nil); len(ranked) != 0 {
			t.Errorf("expected empty result, got %d rows", len(ranked))
		}
	})
}

func TestSummarize(t *testing.T) {
	cfg := sentiment.DefaultConfig()

	t.Run("counts and average", func(t *testing.T) {
		indices := []models.IndexOverview{
			row("MASI", 65.0, models.LabelVeryBullish, "1.20"),
			row("MADEX", 40.0, models.LabelBullish, "0.70"),
			row("MSI20", 5.0, models.LabelNeutral, "0.05"),
			row("CBI", -35.0, models.LabelBearish, "-0.40"),
			row("IAI", -65.0, models.LabelVeryBearish, "-1.10"),
		}

		summary := Summarize(indices, cfg.LabelFor)

		if summary.BullishCount != 2 {
			t.Errorf("BullishCount = %d, want 2", summary.BullishCount)
		}
		if summary.BearishCount != 2 {
			t.Errorf("BearishCount = %d, want 2", summary.BearishCount)
		}
		if summary.NeutralCount != 1 {
			t.Errorf("NeutralCount = %d, want 1", summary.NeutralCount)
		}

		wantAvg := (65.0 + 40.0 + 5.0 - 35.0 - 65.0) / 5.0
		if summary.AverageScore != wantAvg {
			t.Errorf("AverageScore = %v, want %v", summary.AverageScore, wantAvg)
		}
		if summary.AverageLabel != models.LabelNeutral {
			t.Errorf("AverageLabel = %s, want %s", summary.AverageLabel, models.LabelNeutral)
		}
	})

	t.Run("bullish market average", func(t *testing.T) {
		indices := []models.IndexOverview{
			row("MASI", 70.0, models.LabelVeryBullish, "1.50"),
			row("MADEX", 40.0, models.LabelBullish, "0.90"),
		}

		summary := Summarize(indices, cfg.LabelFor)

		if summary.AverageScore != 55.0 {
			t.Errorf("AverageScore = %v, want 55", summary.AverageScore)
		}
		if summary.AverageLabel != models.LabelBullish {
			t.Errorf("AverageLabel = %s, want %s", summary.AverageLabel, models.LabelBullish)
		}
	})

	t.Run("empty input stays neutral", func(t *testing.T) {
		summary := Summarize(nil, cfg.LabelFor)

		if summary.BullishCount != 0 || summary.BearishCount != 0 || summary.NeutralCount != 0 {
			t.Error("expected zero counts for empty input")
		}
		if summary.AverageScore != 0 {
			t.Errorf("AverageScore = %v, want 0", summary.AverageScore)
		}
		if summary.AverageLabel != models.LabelNeutral {
			t.Errorf("AverageLabel = %s, want %s", summary.AverageLabel, models.LabelNeutral)
		}
	})
}
