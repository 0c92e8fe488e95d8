package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"market-pulse/models"

	"github.com/jackc/pgx/v5"
)

// Cache data type prefixes. Callers append the analysis date so that
// each trading day gets its own cache row, e.g. "market_data:2026-08-21".
const (
	CacheTypeMarketData = "market_data"
	CacheTypeSentiment  = "sentiment"
)

// GetCachedRecord retrieves a cached market record for a symbol and
// data type. A miss returns a nil record with no error.
func (r *Repository) GetCachedRecord(ctx context.Context, symbol, dataType string) (models.MarketRecord, error) {
	var data []byte

	// Let the database handle expiry check to avoid timezone issues
	err := r.db.QueryRow(ctx, `
		SELECT data FROM market_data_cache
		WHERE symbol = $1 AND data_type = $2 AND expires_at > NOW()
	`, symbol, dataType).Scan(&data)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	var record models.MarketRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached record: %w", err)
	}

	return record, nil
}

// SetCachedRecord stores a market record in the cache with a TTL.
func (r *Repository) SetCachedRecord(ctx context.Context, symbol, dataType string, record models.MarketRecord, ttl time.Duration) error {
	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return r.setCache(ctx, symbol, dataType, jsonData, ttl)
}

// GetCachedSentiment retrieves a cached sentiment result. A miss
// returns nil with no error.
func (r *Repository) GetCachedSentiment(ctx context.Context, symbol, dataType string) (*models.SentimentResult, error) {
	var data []byte

	err := r.db.QueryRow(ctx, `
		SELECT data FROM market_data_cache
		WHERE symbol = $1 AND data_type = $2 AND expires_at > NOW()
	`, symbol, dataType).Scan(&data)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	var result models.SentimentResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached sentiment: %w", err)
	}

	return &result, nil
}

// SetCachedSentiment stores a sentiment result in the cache with a TTL.
func (r *Repository) SetCachedSentiment(ctx context.Context, symbol, dataType string, result *models.SentimentResult, ttl time.Duration) error {
	jsonData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal sentiment: %w", err)
	}
	return r.setCache(ctx, symbol, dataType, jsonData, ttl)
}

func (r *Repository) setCache(ctx context.Context, symbol, dataType string, jsonData []byte, ttl time.Duration) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO market_data_cache (symbol, data_type, data, expires_at)
		VALUES ($1, $2, $3, NOW() + $4::interval)
		ON CONFLICT (symbol, data_type)
		DO UPDATE SET data = EXCLUDED.data, expires_at = NOW() + $4::interval, created_at = NOW()
	`, symbol, dataType, jsonData, ttl.String())

	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

// InvalidateCache removes cached data for a symbol and data type
func (r *Repository) InvalidateCache(ctx context.Context, symbol, dataType string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM market_data_cache WHERE symbol = $1 AND data_type = $2
	`, symbol, dataType)

	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	return nil
}

// InvalidateAllCacheForSymbol removes all cached data for a symbol
func (r *Repository) InvalidateAllCacheForSymbol(ctx context.Context, symbol string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM market_data_cache WHERE symbol = $1`, symbol)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// CleanExpiredCache removes all expired cache entries
func (r *Repository) CleanExpiredCache(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM market_data_cache WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to clean expired cache: %w", err)
	}
	return result.RowsAffected(), nil
}
