package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"market-pulse/models"
	"market-pulse/observability"

	"github.com/jackc/pgx/v5"
)

const snapshotColumns = `id, symbol, analysis_date, score, label,
	   breadth_score, momentum_score, trend_score, volume_score,
	   confidence, levels, source, computed_at, created_at`

// SaveSnapshot stores a sentiment snapshot. A snapshot already present
// for the same index and analysis date is replaced in place, keeping
// its original row id.
func (r *Repository) SaveSnapshot(ctx context.Context, snap *models.SentimentSnapshot) error {
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("upsert", "sentiment_snapshots")

	levelsJSON, err := json.Marshal(snap.Result.Levels)
	if err != nil {
		metrics.RecordDBError("upsert", "sentiment_snapshots")
		return fmt.Errorf("failed to marshal levels: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO sentiment_snapshots (id, symbol, analysis_date, score, label,
			breadth_score, momentum_score, trend_score, volume_score,
			confidence, levels, source, computed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (symbol, analysis_date)
		DO UPDATE SET score = EXCLUDED.score,
			label = EXCLUDED.label,
			breadth_score = EXCLUDED.breadth_score,
			momentum_score = EXCLUDED.momentum_score,
			trend_score = EXCLUDED.trend_score,
			volume_score = EXCLUDED.volume_score,
			confidence = EXCLUDED.confidence,
			levels = EXCLUDED.levels,
			source = EXCLUDED.source,
			computed_at = EXCLUDED.computed_at,
			created_at = EXCLUDED.created_at
	`, snap.ID, snap.Symbol, snap.AnalysisDate, snap.Result.Score, snap.Result.Label,
		snap.Result.Components.Breadth, snap.Result.Components.Momentum,
		snap.Result.Components.Trend, snap.Result.Components.Volume,
		snap.Result.Confidence, levelsJSON, snap.Source, snap.Result.Timestamp, snap.CreatedAt)

	if err != nil {
		metrics.RecordDBError("upsert", "sentiment_snapshots")
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// scanSnapshot scans a snapshot row into a SentimentSnapshot struct
func scanSnapshot(row pgx.Row) (*models.SentimentSnapshot, error) {
	var snap models.SentimentSnapshot
	var analysisDate time.Time
	var levelsJSON []byte

	err := row.Scan(&snap.ID, &snap.Symbol, &analysisDate, &snap.Result.Score, &snap.Result.Label,
		&snap.Result.Components.Breadth, &snap.Result.Components.Momentum,
		&snap.Result.Components.Trend, &snap.Result.Components.Volume,
		&snap.Result.Confidence, &levelsJSON, &snap.Source, &snap.Result.Timestamp, &snap.CreatedAt)
	if err != nil {
		return nil, err
	}

	snap.AnalysisDate = analysisDate.Format("2006-01-02")
	snap.Result.AnalysisDate = snap.AnalysisDate

	if len(levelsJSON) > 0 {
		if err := json.Unmarshal(levelsJSON, &snap.Result.Levels); err != nil {
			// Leave levels zeroed rather than failing the whole read
			snap.Result.Levels = models.TechnicalLevels{}
		}
	}

	return &snap, nil
}

// GetSnapshot returns the snapshot for an index and analysis date, or
// nil when none has been stored.
func (r *Repository) GetSnapshot(ctx context.Context, symbol, date string) (*models.SentimentSnapshot, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+snapshotColumns+`
		FROM sentiment_snapshots
		WHERE symbol = $1 AND analysis_date = $2
	`, symbol, date)

	snap, err := scanSnapshot(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	return snap, nil
}

// GetLatestSnapshot returns the most recent snapshot for an index, or
// nil when the index has never been analyzed.
func (r *Repository) GetLatestSnapshot(ctx context.Context, symbol string) (*models.SentimentSnapshot, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+snapshotColumns+`
		FROM sentiment_snapshots
		WHERE symbol = $1
		ORDER BY analysis_date DESC
		LIMIT 1
	`, symbol)

	snap, err := scanSnapshot(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}

	return snap, nil
}

// GetSnapshotHistory returns the snapshots for an index over the last
// N days, newest first.
func (r *Repository) GetSnapshotHistory(ctx context.Context, symbol string, days int) ([]models.SentimentSnapshot, error) {
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "sentiment_snapshots")

	if days <= 0 {
		days = 30
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM sentiment_snapshots
		WHERE symbol = $1 AND analysis_date >= CURRENT_DATE - $2
		ORDER BY analysis_date DESC
	`, symbol, days)
	if err != nil {
		metrics.RecordDBError("select", "sentiment_snapshots")
		return nil, fmt.Errorf("failed to query snapshot history: %w", err)
	}
	defer rows.Close()

	var snaps []models.SentimentSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			metrics.RecordDBError("select", "sentiment_snapshots")
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}

	return snaps, nil
}

// GetLatestSnapshots returns the most recent snapshot per index.
func (r *Repository) GetLatestSnapshots(ctx context.Context) ([]models.SentimentSnapshot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT ON (symbol) `+snapshotColumns+`
		FROM sentiment_snapshots
		ORDER BY symbol, analysis_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []models.SentimentSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}

	return snaps, nil
}

// PruneSnapshots deletes snapshots older than the retention window and
// returns how many rows were removed.
func (r *Repository) PruneSnapshots(ctx context.Context, retentionDays int) (int64, error) {
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("delete", "sentiment_snapshots")

	if retentionDays <= 0 {
		retentionDays = 365
	}

	result, err := r.db.Exec(ctx, `
		DELETE FROM sentiment_snapshots WHERE analysis_date < CURRENT_DATE - $1
	`, retentionDays)
	if err != nil {
		metrics.RecordDBError("delete", "sentiment_snapshots")
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	return result.RowsAffected(), nil
}
