package repository

import (
	"context"
	"time"

	"market-pulse/models"
)

// RepositoryInterface defines all repository operations
type RepositoryInterface interface {
	// Health and lifecycle
	Close()
	Health(ctx context.Context) error

	// Sentiment snapshots
	SaveSnapshot(ctx context.Context, snap *models.SentimentSnapshot) error
	GetSnapshot(ctx context.Context, symbol, date string) (*models.SentimentSnapshot, error)
	GetLatestSnapshot(ctx context.Context, symbol string) (*models.SentimentSnapshot, error)
	GetSnapshotHistory(ctx context.Context, symbol string, days int) ([]models.SentimentSnapshot, error)
	GetLatestSnapshots(ctx context.Context) ([]models.SentimentSnapshot, error)
	PruneSnapshots(ctx context.Context, retentionDays int) (int64, error)

	// Cache
	GetCachedRecord(ctx context.Context, symbol, dataType string) (models.MarketRecord, error)
	SetCachedRecord(ctx context.Context, symbol, dataType string, record models.MarketRecord, ttl time.Duration) error
	GetCachedSentiment(ctx context.Context, symbol, dataType string) (*models.SentimentResult, error)
	SetCachedSentiment(ctx context.Context, symbol, dataType string, result *models.SentimentResult, ttl time.Duration) error
	InvalidateCache(ctx context.Context, symbol, dataType string) error
	InvalidateAllCacheForSymbol(ctx context.Context, symbol string) error
	CleanExpiredCache(ctx context.Context) (int64, error)
}

// Compile-time interface verification
var _ RepositoryInterface = (*Repository)(nil)
