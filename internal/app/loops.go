package app

import (
	"context"
	"time"

	"market-pulse/marketdata"
	"market-pulse/observability"
)

// RunRefreshLoop recomputes the primary index on the configured
// interval while the market is open and pushes each fresh snapshot to
// stream clients. It blocks until ctx is cancelled.
func (a *App) RunRefreshLoop(ctx context.Context) {
	interval := time.Duration(a.cfg.Market.RefreshSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	observability.Info("refresh loop started",
		"interval", interval.String(),
		"symbol", marketdata.DefaultSymbol)

	for {
		select {
		case <-ctx.Done():
			observability.Info("refresh loop stopped")
			return
		case <-ticker.C:
			a.refreshTick(ctx)
		}
	}
}

func (a *App) refreshTick(ctx context.Context) {
	if !a.MarketOpen(time.Now()) {
		observability.Debug("market closed, skipping refresh")
		return
	}

	snap, err := a.Refresh(ctx, marketdata.DefaultSymbol)
	if err != nil {
		observability.Warn("scheduled refresh failed", "symbol", marketdata.DefaultSymbol, "error", err)
		return
	}

	a.hub.Broadcast(snap)
	observability.Info("refreshed sentiment",
		"symbol", snap.Symbol,
		"score", snap.Result.Score,
		"label", snap.Result.Label,
		"source", snap.Source)
}

// RunMaintenanceLoop periodically removes expired cache rows and prunes
// snapshots beyond the retention window. It returns immediately when no
// database is configured, and blocks until ctx is cancelled otherwise.
func (a *App) RunMaintenanceLoop(ctx context.Context) {
	if a.repo == nil {
		return
	}

	interval := time.Duration(a.cfg.Cache.CleanupIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	observability.Info("maintenance loop started", "interval", interval.String())

	for {
		select {
		case <-ctx.Done():
			observability.Info("maintenance loop stopped")
			return
		case <-ticker.C:
			a.maintainTick(ctx)
		}
	}
}

func (a *App) maintainTick(ctx context.Context) {
	removed, err := a.repo.CleanExpiredCache(ctx)
	if err != nil {
		observability.Warn("cache cleanup failed", "error", err)
	} else if removed > 0 {
		observability.Info("cleaned expired cache entries", "removed", removed)
	}

	pruned, err := a.repo.PruneSnapshots(ctx, a.cfg.Database.SnapshotRetentionDays)
	if err != nil {
		observability.Warn("snapshot pruning failed", "error", err)
	} else if pruned > 0 {
		observability.Info("pruned old snapshots",
			"removed", pruned,
			"retention_days", a.cfg.Database.SnapshotRetentionDays)
	}
}
