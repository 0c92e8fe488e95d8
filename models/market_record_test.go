package models

import (
	"encoding/json"
	"math"
	"testing"
)

func TestMarketRecord_GetDefaults(t *testing.T) {
	r := NewMarketRecord()
	r.Set(FieldClose, 13050)

	if got := r.Get(FieldClose, 0); got != 13050 {
		t.Errorf("Get(close) = %v, want 13050", got)
	}
	if got := r.Get(FieldRSI, 50); got != 50 {
		t.Errorf("Get(rsi) default = %v, want 50", got)
	}
	if got := r.Get(FieldMA20, 13050); got != 13050 {
		t.Errorf("Get(ma_20) default = %v, want close value 13050", got)
	}
}

func TestMarketRecord_NonFiniteValues(t *testing.T) {
	r := NewMarketRecord()
	r.Set(FieldRSI, math.NaN())
	r.Set(FieldMACD, math.Inf(1))

	if r.Has(FieldRSI) {
		t.Error("NaN value should not be stored")
	}
	if got := r.Get(FieldMACD, 7); got != 7 {
		t.Errorf("Get(macd) after Inf set = %v, want default 7", got)
	}

	// Values written past Set must still read as absent.
	r[FieldVolume] = math.NaN()
	if got := r.Get(FieldVolume, 3); got != 3 {
		t.Errorf("Get(volume) with stored NaN = %v, want default 3", got)
	}
	if r.Has(FieldVolume) {
		t.Error("Has(volume) with stored NaN should be false")
	}
}

func TestMarketRecord_Clone(t *testing.T) {
	r := NewMarketRecord()
	r.Set(FieldClose, 13000)
	r.Set(FieldVolume, 2000)

	c := r.Clone()
	c.Set(FieldClose, 9999)

	if got := r.Get(FieldClose, 0); got != 13000 {
		t.Errorf("original close = %v after clone mutation, want 13000", got)
	}
	if got := c.Get(FieldVolume, 0); got != 2000 {
		t.Errorf("clone volume = %v, want 2000", got)
	}
}

func TestMarketRecord_DeriveChangePct(t *testing.T) {
	tests := []struct {
		name     string
		open     float64
		closePx  float64
		existing *float64
		want     float64
	}{
		{"up day", 12950, 13050, nil, (13050 - 12950) / 12950.0 * 100},
		{"down day", 13100, 13000, nil, (13000 - 13100) / 13100.0 * 100},
		{"zero open", 0, 13000, nil, 0},
		{"already present", 12950, 13050, floatPtr(2.5), 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewMarketRecord()
			r.Set(FieldOpen, tt.open)
			r.Set(FieldClose, tt.closePx)
			if tt.existing != nil {
				r.Set(FieldChangePct, *tt.existing)
			}

			r.DeriveChangePct()

			got := r.Get(FieldChangePct, math.NaN())
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("change_pct = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarketRecord_JSONRoundTrip(t *testing.T) {
	r := NewMarketRecord()
	r.Set(FieldClose, 13050)
	r.Set(FieldAdvances, 400)
	r.Set(FieldRSI, 62.5)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var back MarketRecord
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if got := back.Get(FieldClose, 0); got != 13050 {
		t.Errorf("close after round trip = %v, want 13050", got)
	}
	if got := back.Get(FieldRSI, 0); got != 62.5 {
		t.Errorf("rsi after round trip = %v, want 62.5", got)
	}
	if back.Has(FieldMA200) {
		t.Error("absent field should stay absent after round trip")
	}
}

func TestAllFields_Unique(t *testing.T) {
	seen := make(map[Field]bool, len(AllFields))
	for _, f := range AllFields {
		if seen[f] {
			t.Errorf("duplicate field %q in AllFields", f)
		}
		seen[f] = true
	}
	if len(AllFields) != 21 {
		t.Errorf("AllFields has %d entries, want 21", len(AllFields))
	}
}

func floatPtr(v float64) *float64 { return &v }
