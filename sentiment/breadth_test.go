package sentiment

import (
	"testing"

	"market-pulse/models"
)

func breadthRecord(advances, declines, unchanged float64) models.MarketRecord {
	r := models.NewMarketRecord()
	r.Set(models.FieldAdvances, advances)
	r.Set(models.FieldDeclines, declines)
	r.Set(models.FieldUnchanged, unchanged)
	return r
}

func TestBreadthScore(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name      string
		advances  float64
		declines  float64
		unchanged float64
		want      float64
	}{
		{"typical positive day", 400, 250, 50, 30 + (400.0/700.0-0.55)*200},
		{"everything advances clamps to max", 700, 0, 0, 100},
		{"strong breadth", 525, 150, 25, 80 + (0.75-0.75)*200},
		{"balanced day", 350, 300, 50, (0.5-0.45)*150},
		{"weak breadth", 280, 370, 50, -30 + (0.40-0.40)*200},
		{"rout", 70, 600, 30, -100 + 0.10*500},
		{"everything declines", 0, 700, 0, -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.breadthScore(breadthRecord(tt.advances, tt.declines, tt.unchanged))
			if !almostEqual(got, tt.want) {
				t.Errorf("breadthScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBreadthScore_NoIssuesTraded(t *testing.T) {
	e := NewEngine(nil)

	if got := e.breadthScore(breadthRecord(0, 0, 0)); got != 0 {
		t.Errorf("breadthScore with zero total = %v, want 0", got)
	}
	if got := e.breadthScore(models.NewMarketRecord()); got != 0 {
		t.Errorf("breadthScore with absent fields = %v, want 0", got)
	}
}

func TestBreadthScore_Bounds(t *testing.T) {
	e := NewEngine(nil)

	for advances := 0.0; advances <= 700; advances += 35 {
		got := e.breadthScore(breadthRecord(advances, 700-advances, 0))
		if got < -100 || got > 100 {
			t.Errorf("breadthScore(advances=%v) = %v, out of [-100, 100]", advances, got)
		}
	}
}
