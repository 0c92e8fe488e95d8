package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Terminal gateway configuration
	Terminal TerminalConfig

	// Market session configuration
	Market MarketConfig

	// Cache TTL configuration
	Cache CacheConfig

	// Analysis configuration
	Analysis AnalysisConfig

	// Scoring configuration
	Scoring ScoringConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL                   string
	SnapshotRetentionDays int
}

// TerminalConfig holds terminal gateway configuration
type TerminalConfig struct {
	BaseURL               string
	APIKey                string
	HealthCacheTTLSeconds int // TTL for gateway health probe caching (default: 30)
}

// MarketConfig holds market session configuration
type MarketConfig struct {
	Timezone       string // exchange timezone (default: Africa/Casablanca)
	RefreshSeconds int    // automatic refresh interval while the market is open
	HistoryDir     string // directory for the CSV history archive
}

// CacheConfig holds cache TTL configuration
type CacheConfig struct {
	MarketTTLMinutes       int // market data rows (default: 30)
	SentimentTTLMinutes    int // computed sentiment rows (default: 60)
	HistoryTTLHours        int // rows backfilled from the archive (default: 24)
	CleanupIntervalMinutes int // expired row sweep interval (default: 60)
}

// AnalysisConfig holds analysis pipeline configuration
type AnalysisConfig struct {
	TimeoutSeconds   int
	ConcurrencyLimit int
}

// ScoringConfig holds component weight configuration
type ScoringConfig struct {
	WeightBreadth  float64
	WeightMomentum float64
	WeightTrend    float64
	WeightVolume   float64
	BandsPath      string // optional YAML file overriding score bands
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	CORSAllowedOrigins string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL:                   os.Getenv("DATABASE_URL"),
			SnapshotRetentionDays: getEnvInt("SNAPSHOT_RETENTION_DAYS", 365),
		},
		Terminal: TerminalConfig{
			BaseURL:               os.Getenv("TERMINAL_GATEWAY_URL"),
			APIKey:                os.Getenv("TERMINAL_API_KEY"),
			HealthCacheTTLSeconds: getEnvInt("TERMINAL_HEALTH_CACHE_TTL_SECONDS", 30),
		},
		Market: MarketConfig{
			Timezone:       getEnvString("MARKET_TIMEZONE", "Africa/Casablanca"),
			RefreshSeconds: getEnvInt("MARKET_REFRESH_SECONDS", 300),
			HistoryDir:     getEnvString("MARKET_HISTORY_DIR", "data/history"),
		},
		Cache: CacheConfig{
			MarketTTLMinutes:       getEnvInt("CACHE_MARKET_TTL_MINUTES", 30),
			SentimentTTLMinutes:    getEnvInt("CACHE_SENTIMENT_TTL_MINUTES", 60),
			HistoryTTLHours:        getEnvInt("CACHE_HISTORY_TTL_HOURS", 24),
			CleanupIntervalMinutes: getEnvInt("CACHE_CLEANUP_INTERVAL_MINUTES", 60),
		},
		Analysis: AnalysisConfig{
			TimeoutSeconds:   getEnvInt("ANALYSIS_TIMEOUT_SECONDS", 30),
			ConcurrencyLimit: getEnvInt("ANALYSIS_CONCURRENCY_LIMIT", 3),
		},
		Scoring: ScoringConfig{
			WeightBreadth:  getEnvFloat("SCORING_WEIGHT_BREADTH", 0.30),
			WeightMomentum: getEnvFloat("SCORING_WEIGHT_MOMENTUM", 0.25),
			WeightTrend:    getEnvFloat("SCORING_WEIGHT_TREND", 0.25),
			WeightVolume:   getEnvFloat("SCORING_WEIGHT_VOLUME", 0.20),
			BandsPath:      os.Getenv("SCORING_BANDS_PATH"),
		},
		HTTP: HTTPConfig{
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate scoring weights sum to 1.0
	weightSum := c.Scoring.WeightBreadth + c.Scoring.WeightMomentum + c.Scoring.WeightTrend + c.Scoring.WeightVolume
	if weightSum < 0.99 || weightSum > 1.01 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.2f (breadth=%.2f, momentum=%.2f, trend=%.2f, volume=%.2f)",
			weightSum, c.Scoring.WeightBreadth, c.Scoring.WeightMomentum, c.Scoring.WeightTrend, c.Scoring.WeightVolume)
	}

	// Validate weight ranges
	if c.Scoring.WeightBreadth < 0 || c.Scoring.WeightBreadth > 1 {
		return fmt.Errorf("SCORING_WEIGHT_BREADTH must be between 0 and 1, got %.2f", c.Scoring.WeightBreadth)
	}
	if c.Scoring.WeightMomentum < 0 || c.Scoring.WeightMomentum > 1 {
		return fmt.Errorf("SCORING_WEIGHT_MOMENTUM must be between 0 and 1, got %.2f", c.Scoring.WeightMomentum)
	}
	if c.Scoring.WeightTrend < 0 || c.Scoring.WeightTrend > 1 {
		return fmt.Errorf("SCORING_WEIGHT_TREND must be between 0 and 1, got %.2f", c.Scoring.WeightTrend)
	}
	if c.Scoring.WeightVolume < 0 || c.Scoring.WeightVolume > 1 {
		return fmt.Errorf("SCORING_WEIGHT_VOLUME must be between 0 and 1, got %.2f", c.Scoring.WeightVolume)
	}

	// Validate positive integers
	if c.Analysis.TimeoutSeconds <= 0 {
		return fmt.Errorf("ANALYSIS_TIMEOUT_SECONDS must be positive, got %d", c.Analysis.TimeoutSeconds)
	}
	if c.Analysis.ConcurrencyLimit <= 0 {
		return fmt.Errorf("ANALYSIS_CONCURRENCY_LIMIT must be positive, got %d", c.Analysis.ConcurrencyLimit)
	}
	if c.Market.RefreshSeconds <= 0 {
		return fmt.Errorf("MARKET_REFRESH_SECONDS must be positive, got %d", c.Market.RefreshSeconds)
	}

	// Validate the exchange timezone resolves
	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("MARKET_TIMEZONE %q is not a valid timezone: %w", c.Market.Timezone, err)
	}

	return nil
}

// HasDatabase returns true if database configuration is available
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasTerminal returns true if terminal gateway configuration is available
func (c *Config) HasTerminal() bool {
	return c.Terminal.BaseURL != ""
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed >= 0 && parsed <= 1 {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL:                   "",
			SnapshotRetentionDays: 365,
		},
		Terminal: TerminalConfig{
			BaseURL:               "",
			APIKey:                "",
			HealthCacheTTLSeconds: 30,
		},
		Market: MarketConfig{
			Timezone:       "Africa/Casablanca",
			RefreshSeconds: 300,
			HistoryDir:     "data/history",
		},
		Cache: CacheConfig{
			MarketTTLMinutes:       30,
			SentimentTTLMinutes:    60,
			HistoryTTLHours:        24,
			CleanupIntervalMinutes: 60,
		},
		Analysis: AnalysisConfig{
			TimeoutSeconds:   30,
			ConcurrencyLimit: 3,
		},
		Scoring: ScoringConfig{
			WeightBreadth:  0.30,
			WeightMomentum: 0.25,
			WeightTrend:    0.25,
			WeightVolume:   0.20,
			BandsPath:      "",
		},
		HTTP: HTTPConfig{
			CORSAllowedOrigins: "*",
		},
	}
}
