package sentiment

import (
	"fmt"
	"os"

	"market-pulse/models"

	"gopkg.in/yaml.v3"
)

// Weights blend the four sub-scores into the overall score. They must
// sum to 1.0.
type Weights struct {
	Breadth  float64 `yaml:"breadth"`
	Momentum float64 `yaml:"momentum"`
	Trend    float64 `yaml:"trend"`
	Volume   float64 `yaml:"volume"`
}

// Threshold pairs a minimum overall score with a sentiment label.
type Threshold struct {
	Score float64 `yaml:"score"`
	Label string  `yaml:"label"`
}

// Config holds every tunable of the scoring engine. Load once, then
// treat as read-only; the engine never mutates it.
type Config struct {
	Weights    Weights          `yaml:"weights"`
	Thresholds []Threshold      `yaml:"thresholds"`
	Breadth    BandTable        `yaml:"breadth_bands"`
	Extremes   BandTable        `yaml:"extremes_bands"`
	Volume     DirectionalTable `yaml:"volume_bands"`
}

// DefaultConfig returns the canonical weights, thresholds, and band
// tables.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{Breadth: 0.30, Momentum: 0.25, Trend: 0.25, Volume: 0.20},
		Thresholds: []Threshold{
			{Score: 60, Label: models.LabelVeryBullish},
			{Score: 30, Label: models.LabelBullish},
			{Score: -30, Label: models.LabelNeutral},
			{Score: -60, Label: models.LabelBearish},
			{Score: -100, Label: models.LabelVeryBearish},
		},
		Breadth: BandTable{Bands: []Band{
			{Min: 0.75, Slope: 200, Intercept: 80},
			{Min: 0.60, Slope: 400, Intercept: 60},
			{Min: 0.55, Slope: 200, Intercept: 30},
			{Min: 0.45, Slope: 150, Intercept: 0},
			{Min: 0.40, Slope: 200, Intercept: -30},
			{Min: 0.25, Slope: 400, Intercept: -60},
			{Min: 0, Slope: 500, Intercept: -100},
		}},
		Extremes: BandTable{Strict: true, Bands: []Band{
			{Min: 0.7, Intercept: 80},
			{Min: 0.5, Intercept: 30},
			{Min: 0.3, Intercept: -30},
			{Min: 0, Intercept: -80},
		}},
		Volume: DirectionalTable{Bands: []DirectionalBand{
			{Min: 1.5, Up: 70, Down: -70, Flat: 30},
			{Min: 1.0, Up: 40, Down: -40, Flat: 0},
			{Min: 0.7, Up: 20, Down: -20, Flat: -10},
			{Min: 0, Up: -40, Down: -40, Flat: -40},
		}},
	}
}

// LoadConfig reads a YAML override file on top of the defaults. An
// empty path returns the defaults unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scoring config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scoring config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the weights, thresholds, and band tables.
func (c *Config) Validate() error {
	total := c.Weights.Breadth + c.Weights.Momentum + c.Weights.Trend + c.Weights.Volume
	if total < 0.99 || total > 1.01 {
		return fmt.Errorf("component weights must sum to 1.0, got %.2f", total)
	}
	for name, w := range map[string]float64{
		"breadth":  c.Weights.Breadth,
		"momentum": c.Weights.Momentum,
		"trend":    c.Weights.Trend,
		"volume":   c.Weights.Volume,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("%s weight must be between 0 and 1, got %.2f", name, w)
		}
	}

	if len(c.Thresholds) == 0 {
		return fmt.Errorf("at least one sentiment threshold required")
	}
	for i, th := range c.Thresholds {
		if th.Label == "" {
			return fmt.Errorf("sentiment threshold %d has no label", i)
		}
		if i > 0 && th.Score >= c.Thresholds[i-1].Score {
			return fmt.Errorf("sentiment thresholds must be strictly descending")
		}
	}

	if err := c.Breadth.validate("breadth bands"); err != nil {
		return err
	}
	if err := c.Extremes.validate("extremes bands"); err != nil {
		return err
	}
	if err := c.Volume.validate("volume bands"); err != nil {
		return err
	}
	return nil
}

// LabelFor classifies an overall score. Thresholds are checked from
// the most bullish down; a score equal to a threshold takes the more
// bullish label, and a score below every threshold takes the last one.
func (c *Config) LabelFor(score float64) string {
	if len(c.Thresholds) == 0 {
		return models.LabelNeutral
	}
	for _, th := range c.Thresholds {
		if score >= th.Score {
			return th.Label
		}
	}
	return c.Thresholds[len(c.Thresholds)-1].Label
}

func errEmptyTable(name string) error {
	return fmt.Errorf("%s: at least one band required", name)
}

func errTableOrder(name string) error {
	return fmt.Errorf("%s: band thresholds must be strictly descending", name)
}
