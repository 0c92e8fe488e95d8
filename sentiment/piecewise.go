package sentiment

// Band is one row of a piecewise linear mapping. An input x falling in
// this band scores Intercept + (x-Min)*Slope; a zero slope makes the
// band a flat step.
type Band struct {
	Min       float64 `yaml:"min"`
	Slope     float64 `yaml:"slope"`
	Intercept float64 `yaml:"intercept"`
}

func (b Band) score(x float64) float64 {
	return b.Intercept + (x-b.Min)*b.Slope
}

// BandTable maps a value to a score through ordered bands, highest
// threshold first. Strict tables match x > Min, inclusive tables
// x >= Min. The final band is the floor and matches unconditionally.
// Tables must hold at least one band; Config.Validate enforces this.
type BandTable struct {
	Strict bool   `yaml:"strict,omitempty"`
	Bands  []Band `yaml:"bands"`
}

// Evaluate returns the score for x.
func (t BandTable) Evaluate(x float64) float64 {
	n := len(t.Bands)
	for _, b := range t.Bands[:n-1] {
		if t.Strict {
			if x > b.Min {
				return b.score(x)
			}
		} else if x >= b.Min {
			return b.score(x)
		}
	}
	return t.Bands[n-1].score(x)
}

func (t BandTable) validate(name string) error {
	if len(t.Bands) == 0 {
		return errEmptyTable(name)
	}
	for i := 1; i < len(t.Bands); i++ {
		if t.Bands[i].Min >= t.Bands[i-1].Min {
			return errTableOrder(name)
		}
	}
	return nil
}

// DirectionalBand scores a band by the sign of the day's price change
// rather than a linear formula.
type DirectionalBand struct {
	Min  float64 `yaml:"min"`
	Up   float64 `yaml:"up"`
	Down float64 `yaml:"down"`
	Flat float64 `yaml:"flat"`
}

func (b DirectionalBand) pick(changePct float64) float64 {
	switch {
	case changePct > 0:
		return b.Up
	case changePct < 0:
		return b.Down
	default:
		return b.Flat
	}
}

// DirectionalTable matches bands strictly (x > Min), highest threshold
// first; the final band is the floor and matches unconditionally.
type DirectionalTable struct {
	Bands []DirectionalBand `yaml:"bands"`
}

// Evaluate returns the score for the ratio given the sign of changePct.
func (t DirectionalTable) Evaluate(ratio, changePct float64) float64 {
	n := len(t.Bands)
	for _, b := range t.Bands[:n-1] {
		if ratio > b.Min {
			return b.pick(changePct)
		}
	}
	return t.Bands[n-1].pick(changePct)
}

func (t DirectionalTable) validate(name string) error {
	if len(t.Bands) == 0 {
		return errEmptyTable(name)
	}
	for i := 1; i < len(t.Bands); i++ {
		if t.Bands[i].Min >= t.Bands[i-1].Min {
			return errTableOrder(name)
		}
	}
	return nil
}
