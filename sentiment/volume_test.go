package sentiment

import (
	"testing"

	"market-pulse/models"
)

func volumeRecord(volume, volumeAvg, changePct float64) models.MarketRecord {
	r := models.NewMarketRecord()
	r.Set(models.FieldVolume, volume)
	r.Set(models.FieldVolumeAvg20D, volumeAvg)
	r.Set(models.FieldChangePct, changePct)
	return r
}

func TestVolumeScore(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name      string
		volume    float64
		volumeAvg float64
		changePct float64
		want      float64
	}{
		{"surge confirming rally", 3000, 1800, 0.8, 70},
		{"surge confirming selloff", 3000, 1800, -0.8, -70},
		{"surge with flat price", 3000, 1800, 0, 30},
		{"elevated up", 2160, 1800, 0.5, 40},
		{"elevated down", 2160, 1800, -0.5, -40},
		{"light volume up", 1500, 1800, 0.5, 20},
		{"light volume down", 1500, 1800, -0.5, -20},
		{"light volume flat", 1500, 1800, 0, -10},
		{"thin volume up still weak", 900, 1800, 2.0, -40},
		{"thin volume down", 900, 1800, -2.0, -40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.volumeScore(volumeRecord(tt.volume, tt.volumeAvg, tt.changePct))
			if got != tt.want {
				t.Errorf("volumeScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVolumeScore_DegenerateInputs(t *testing.T) {
	e := NewEngine(nil)

	t.Run("zero average carries no signal", func(t *testing.T) {
		if got := e.volumeScore(volumeRecord(2000, 0, 1.0)); got != 0 {
			t.Errorf("volumeScore with zero average = %v, want 0", got)
		}
	})

	t.Run("empty record carries no signal", func(t *testing.T) {
		if got := e.volumeScore(models.NewMarketRecord()); got != 0 {
			t.Errorf("volumeScore(empty) = %v, want 0", got)
		}
	})

	t.Run("missing average falls back to the day's volume", func(t *testing.T) {
		r := models.NewMarketRecord()
		r.Set(models.FieldVolume, 2000)
		r.Set(models.FieldChangePct, 0.5)
		// Ratio 1.0 is not strictly above 1.0, so this lands in the
		// light volume band.
		if got := e.volumeScore(r); got != 20 {
			t.Errorf("volumeScore without average = %v, want 20", got)
		}
	})
}
