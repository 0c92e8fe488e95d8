package config

import (
	"os"
	"testing"
)

// saveEnv saves current environment variables for restoration
func saveEnv(t *testing.T, keys []string) map[string]string {
	t.Helper()
	saved := make(map[string]string)
	for _, key := range keys {
		saved[key] = os.Getenv(key)
	}
	return saved
}

// restoreEnv restores previously saved environment variables
func restoreEnv(t *testing.T, saved map[string]string) {
	t.Helper()
	for key, val := range saved {
		if val == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, val)
		}
	}
}

// clearEnv clears environment variables
func clearEnv(t *testing.T, keys []string) {
	t.Helper()
	for _, key := range keys {
		os.Unsetenv(key)
	}
}

var allEnvKeys = []string{
	"DATABASE_URL",
	"SNAPSHOT_RETENTION_DAYS",
	"TERMINAL_GATEWAY_URL",
	"TERMINAL_API_KEY",
	"TERMINAL_HEALTH_CACHE_TTL_SECONDS",
	"MARKET_TIMEZONE",
	"MARKET_REFRESH_SECONDS",
	"MARKET_HISTORY_DIR",
	"CACHE_MARKET_TTL_MINUTES",
	"CACHE_SENTIMENT_TTL_MINUTES",
	"CACHE_HISTORY_TTL_HOURS",
	"CACHE_CLEANUP_INTERVAL_MINUTES",
	"ANALYSIS_TIMEOUT_SECONDS",
	"ANALYSIS_CONCURRENCY_LIMIT",
	"SCORING_WEIGHT_BREADTH",
	"SCORING_WEIGHT_MOMENTUM",
	"SCORING_WEIGHT_TREND",
	"SCORING_WEIGHT_VOLUME",
	"SCORING_BANDS_PATH",
	"CORS_ALLOWED_ORIGINS",
}

func TestLoad_Defaults(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}

	// Check defaults
	if cfg.Database.SnapshotRetentionDays != 365 {
		t.Errorf("expected SnapshotRetentionDays=365, got %d", cfg.Database.SnapshotRetentionDays)
	}
	if cfg.Terminal.HealthCacheTTLSeconds != 30 {
		t.Errorf("expected HealthCacheTTLSeconds=30, got %d", cfg.Terminal.HealthCacheTTLSeconds)
	}
	if cfg.Market.Timezone != "Africa/Casablanca" {
		t.Errorf("expected Timezone='Africa/Casablanca', got %s", cfg.Market.Timezone)
	}
	if cfg.Market.RefreshSeconds != 300 {
		t.Errorf("expected RefreshSeconds=300, got %d", cfg.Market.RefreshSeconds)
	}
	if cfg.Market.HistoryDir != "data/history" {
		t.Errorf("expected HistoryDir='data/history', got %s", cfg.Market.HistoryDir)
	}
	if cfg.Cache.MarketTTLMinutes != 30 {
		t.Errorf("expected MarketTTLMinutes=30, got %d", cfg.Cache.MarketTTLMinutes)
	}
	if cfg.Cache.SentimentTTLMinutes != 60 {
		t.Errorf("expected SentimentTTLMinutes=60, got %d", cfg.Cache.SentimentTTLMinutes)
	}
	if cfg.Cache.HistoryTTLHours != 24 {
		t.Errorf("expected HistoryTTLHours=24, got %d", cfg.Cache.HistoryTTLHours)
	}
	if cfg.Analysis.TimeoutSeconds != 30 {
		t.Errorf("expected TimeoutSeconds=30, got %d", cfg.Analysis.TimeoutSeconds)
	}
	if cfg.Analysis.ConcurrencyLimit != 3 {
		t.Errorf("expected ConcurrencyLimit=3, got %d", cfg.Analysis.ConcurrencyLimit)
	}
	if cfg.Scoring.WeightBreadth != 0.30 {
		t.Errorf("expected WeightBreadth=0.30, got %f", cfg.Scoring.WeightBreadth)
	}
	if cfg.Scoring.WeightMomentum != 0.25 {
		t.Errorf("expected WeightMomentum=0.25, got %f", cfg.Scoring.WeightMomentum)
	}
	if cfg.Scoring.WeightTrend != 0.25 {
		t.Errorf("expected WeightTrend=0.25, got %f", cfg.Scoring.WeightTrend)
	}
	if cfg.Scoring.WeightVolume != 0.20 {
		t.Errorf("expected WeightVolume=0.20, got %f", cfg.Scoring.WeightVolume)
	}
	if cfg.HTTP.CORSAllowedOrigins != "*" {
		t.Errorf("expected CORSAllowedOrigins='*', got %s", cfg.HTTP.CORSAllowedOrigins)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("DATABASE_URL", "postgres://localhost/test")
	os.Setenv("TERMINAL_GATEWAY_URL", "http://gateway:9443")
	os.Setenv("TERMINAL_API_KEY", "test-key")
	os.Setenv("MARKET_TIMEZONE", "UTC")
	os.Setenv("MARKET_REFRESH_SECONDS", "60")
	os.Setenv("MARKET_HISTORY_DIR", "/var/lib/pulse/history")
	os.Setenv("CACHE_MARKET_TTL_MINUTES", "15")
	os.Setenv("ANALYSIS_TIMEOUT_SECONDS", "60")
	os.Setenv("ANALYSIS_CONCURRENCY_LIMIT", "5")
	os.Setenv("SCORING_WEIGHT_BREADTH", "0.4")
	os.Setenv("SCORING_WEIGHT_MOMENTUM", "0.3")
	os.Setenv("SCORING_WEIGHT_TREND", "0.2")
	os.Setenv("SCORING_WEIGHT_VOLUME", "0.1")
	os.Setenv("SCORING_BANDS_PATH", "/etc/pulse/bands.yaml")
	os.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with custom values failed: %v", err)
	}

	if cfg.Database.URL != "postgres://localhost/test" {
		t.Errorf("expected Database.URL='postgres://localhost/test', got %s", cfg.Database.URL)
	}
	if cfg.Terminal.BaseURL != "http://gateway:9443" {
		t.Errorf("expected Terminal.BaseURL='http://gateway:9443', got %s", cfg.Terminal.BaseURL)
	}
	if cfg.Terminal.APIKey != "test-key" {
		t.Errorf("expected Terminal.APIKey='test-key', got %s", cfg.Terminal.APIKey)
	}
	if cfg.Market.Timezone != "UTC" {
		t.Errorf("expected Timezone='UTC', got %s", cfg.Market.Timezone)
	}
	if cfg.Market.RefreshSeconds != 60 {
		t.Errorf("expected RefreshSeconds=60, got %d", cfg.Market.RefreshSeconds)
	}
	if cfg.Market.HistoryDir != "/var/lib/pulse/history" {
		t.Errorf("expected HistoryDir='/var/lib/pulse/history', got %s", cfg.Market.HistoryDir)
	}
	if cfg.Cache.MarketTTLMinutes != 15 {
		t.Errorf("expected MarketTTLMinutes=15, got %d", cfg.Cache.MarketTTLMinutes)
	}
	if cfg.Analysis.TimeoutSeconds != 60 {
		t.Errorf("expected TimeoutSeconds=60, got %d", cfg.Analysis.TimeoutSeconds)
	}
	if cfg.Analysis.ConcurrencyLimit != 5 {
		t.Errorf("expected ConcurrencyLimit=5, got %d", cfg.Analysis.ConcurrencyLimit)
	}
	if cfg.Scoring.WeightBreadth != 0.4 {
		t.Errorf("expected WeightBreadth=0.4, got %f", cfg.Scoring.WeightBreadth)
	}
	if cfg.Scoring.BandsPath != "/etc/pulse/bands.yaml" {
		t.Errorf("expected BandsPath='/etc/pulse/bands.yaml', got %s", cfg.Scoring.BandsPath)
	}
	if cfg.HTTP.CORSAllowedOrigins != "http://localhost:3000" {
		t.Errorf("expected CORSAllowedOrigins='http://localhost:3000', got %s", cfg.HTTP.CORSAllowedOrigins)
	}
}

func TestValidate_WeightsSumTo1(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	// Weights that don't sum to 1.0
	os.Setenv("SCORING_WEIGHT_BREADTH", "0.5")
	os.Setenv("SCORING_WEIGHT_MOMENTUM", "0.3")
	os.Setenv("SCORING_WEIGHT_TREND", "0.3")
	os.Setenv("SCORING_WEIGHT_VOLUME", "0.2") // Total = 1.3

	_, err := Load()
	if err == nil {
		t.Error("expected error for weights not summing to 1.0")
	}
}

func TestValidate_WeightRange(t *testing.T) {
	// getEnvFloat rejects out-of-range values, so exercise Validate directly.
	cfg := NewTestConfig()
	cfg.Scoring.WeightBreadth = -0.1
	cfg.Scoring.WeightMomentum = 0.5
	cfg.Scoring.WeightTrend = 0.4
	cfg.Scoring.WeightVolume = 0.2

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative weight")
	}
}

func TestValidate_InvalidTimezone(t *testing.T) {
	cfg := NewTestConfig()
	cfg.Market.Timezone = "Mars/Olympus_Mons"

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestValidate_PositiveIntegers(t *testing.T) {
	tests := []struct {
		name    string
		envKey  string
		envVal  string
		wantErr bool
	}{
		{
			name:    "negative timeout uses default",
			envKey:  "ANALYSIS_TIMEOUT_SECONDS",
			envVal:  "-5",
			wantErr: false, // uses default
		},
		{
			name:    "zero concurrency uses default",
			envKey:  "ANALYSIS_CONCURRENCY_LIMIT",
			envVal:  "0",
			wantErr: false, // uses default
		},
		{
			name:    "invalid refresh uses default",
			envKey:  "MARKET_REFRESH_SECONDS",
			envVal:  "not-a-number",
			wantErr: false, // uses default
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := saveEnv(t, allEnvKeys)
			defer restoreEnv(t, saved)
			clearEnv(t, allEnvKeys)

			os.Setenv(tt.envKey, tt.envVal)

			_, err := Load()
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestHasDatabase(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{URL: ""},
	}
	if cfg.HasDatabase() {
		t.Error("expected HasDatabase() to return false for empty URL")
	}

	cfg.Database.URL = "postgres://localhost/test"
	if !cfg.HasDatabase() {
		t.Error("expected HasDatabase() to return true for non-empty URL")
	}
}

func TestHasTerminal(t *testing.T) {
	cfg := &Config{
		Terminal: TerminalConfig{BaseURL: ""},
	}
	if cfg.HasTerminal() {
		t.Error("expected HasTerminal() to return false for empty URL")
	}

	cfg.Terminal.BaseURL = "http://gateway:9443"
	if !cfg.HasTerminal() {
		t.Error("expected HasTerminal() to return true for non-empty URL")
	}
}

func TestNewTestConfig(t *testing.T) {
	cfg := NewTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("NewTestConfig() should validate cleanly, got: %v", err)
	}
	if cfg.HasDatabase() || cfg.HasTerminal() {
		t.Error("test config should not point at external services")
	}
}

func TestGetEnvString(t *testing.T) {
	key := "TEST_GET_ENV_STRING"
	defer os.Unsetenv(key)

	// Empty returns default
	os.Unsetenv(key)
	if got := getEnvString(key, "default"); got != "default" {
		t.Errorf("expected 'default', got %s", got)
	}

	// Set value returns value
	os.Setenv(key, "custom")
	if got := getEnvString(key, "default"); got != "custom" {
		t.Errorf("expected 'custom', got %s", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_GET_ENV_INT"
	defer os.Unsetenv(key)

	// Empty returns default
	os.Unsetenv(key)
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}

	// Valid integer
	os.Setenv(key, "100")
	if got := getEnvInt(key, 42); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}

	// Invalid integer returns default
	os.Setenv(key, "invalid")
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42 for invalid value, got %d", got)
	}

	// Negative returns default
	os.Setenv(key, "-5")
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42 for negative value, got %d", got)
	}

	// Zero returns default
	os.Setenv(key, "0")
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42 for zero value, got %d", got)
	}
}

func TestGetEnvFloat(t *testing.T) {
	key := "TEST_GET_ENV_FLOAT"
	defer os.Unsetenv(key)

	// Empty returns default
	os.Unsetenv(key)
	if got := getEnvFloat(key, 0.5); got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}

	// Valid float
	os.Setenv(key, "0.75")
	if got := getEnvFloat(key, 0.5); got != 0.75 {
		t.Errorf("expected 0.75, got %f", got)
	}

	// Invalid float returns default
	os.Setenv(key, "invalid")
	if got := getEnvFloat(key, 0.5); got != 0.5 {
		t.Errorf("expected 0.5 for invalid value, got %f", got)
	}

	// Out of range (> 1) returns default
	os.Setenv(key, "1.5")
	if got := getEnvFloat(key, 0.5); got != 0.5 {
		t.Errorf("expected 0.5 for value > 1, got %f", got)
	}

	// Negative returns default
	os.Setenv(key, "-0.1")
	if got := getEnvFloat(key, 0.5); got != 0.5 {
		t.Errorf("expected 0.5 for negative value, got %f", got)
	}
}
