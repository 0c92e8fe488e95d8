package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"market-pulse/marketdata"
	"market-pulse/models"
	"market-pulse/observability"
	"market-pulse/repository"
)

// Analyze runs the full scoring chain for one index and date. Market
// data is taken from the first source that answers: the database cache,
// the terminal gateway, the local history archive, and finally the
// synthetic generator. The result is cached and persisted when a
// database is configured. An empty date means today.
func (a *App) Analyze(ctx context.Context, symbol, date string) (*models.SentimentSnapshot, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !marketdata.KnownSymbol(symbol) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}

	if date == "" {
		date = a.Today()
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}

	select {
	case a.analysisSem <- struct{}{}:
		defer func() { <-a.analysisSem }()
	default:
		return nil, ErrBusy
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.Analysis.TimeoutSeconds)*time.Second)
	defer cancel()

	metrics := observability.GetMetrics()
	metrics.RecordAnalysisRequest(symbol)
	timer := metrics.NewTimer()

	if a.repo != nil {
		cached, err := a.repo.GetCachedSentiment(ctx, symbol, sentimentCacheKey(date))
		if err != nil {
			observability.Warn("sentiment cache read failed", "symbol", symbol, "error", err)
		}
		if cached != nil {
			metrics.RecordCacheHit(repository.CacheTypeSentiment)
			timer.ObserveAnalysis(symbol, "cached")
			return models.NewSentimentSnapshot(symbol, models.SourceCache, *cached), nil
		}
		metrics.RecordCacheMiss(repository.CacheTypeSentiment)
	}

	record, source := a.fetchRecord(ctx, symbol, date)
	result := a.engine.Calculate(record, date)
	snap := models.NewSentimentSnapshot(symbol, source, result)

	a.persist(ctx, snap)

	metrics.RecordSentiment(result.Label, result.Score, result.Confidence)
	timer.ObserveAnalysis(symbol, "success")

	observability.Info("analyzed index",
		"symbol", symbol,
		"date", date,
		"score", result.Score,
		"label", result.Label,
		"confidence", result.Confidence,
		"source", source)

	return snap, nil
}

// Refresh drops every cache entry for the index and recomputes today's
// sentiment from fresh market data.
func (a *App) Refresh(ctx context.Context, symbol string) (*models.SentimentSnapshot, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !marketdata.KnownSymbol(symbol) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}

	if a.repo != nil {
		if err := a.repo.InvalidateAllCacheForSymbol(ctx, symbol); err != nil {
			observability.Warn("cache invalidation failed", "symbol", symbol, "error", err)
		}
	}

	return a.Analyze(ctx, symbol, "")
}

// fetchRecord walks the source chain and returns the first record found
// together with the source that produced it. The synthetic generator
// never fails, so there is always a record.
func (a *App) fetchRecord(ctx context.Context, symbol, date string) (models.MarketRecord, models.SnapshotSource) {
	metrics := observability.GetMetrics()

	if a.repo != nil {
		record, err := a.repo.GetCachedRecord(ctx, symbol, marketCacheKey(date))
		if err != nil {
			observability.Warn("market data cache read failed", "symbol", symbol, "error", err)
		}
		if record != nil {
			metrics.RecordCacheHit(repository.CacheTypeMarketData)
			return record, models.SourceCache
		}
		metrics.RecordCacheMiss(repository.CacheTypeMarketData)
	}

	if a.terminal != nil {
		timer := metrics.NewTimer()
		record, err := a.terminal.Fetch(ctx, symbol, date)
		if err == nil {
			timer.ObserveSource(string(models.SourceTerminal))
			a.writeBack(ctx, symbol, date, record)
			return record, models.SourceTerminal
		}
		metrics.RecordSourceError(string(models.SourceTerminal), sourceErrorType(err))
		if errors.Is(err, marketdata.ErrNoData) {
			observability.Info("terminal has no data for date", "symbol", symbol, "date", date)
		} else {
			observability.Warn("terminal fetch failed", "symbol", symbol, "date", date, "error", err)
		}
	}

	if a.history != nil {
		timer := metrics.NewTimer()
		record, err := a.history.Fetch(ctx, symbol, date)
		if err == nil {
			timer.ObserveSource(string(models.SourceHistory))
			if a.repo != nil {
				// Archived days never change, so they get the long TTL.
				ttl := time.Duration(a.cfg.Cache.HistoryTTLHours) * time.Hour
				if cerr := a.repo.SetCachedRecord(ctx, symbol, marketCacheKey(date), record, ttl); cerr != nil {
					observability.Warn("failed to cache archived market data", "symbol", symbol, "error", cerr)
				}
			}
			return record, models.SourceHistory
		}
		metrics.RecordSourceError(string(models.SourceHistory), sourceErrorType(err))
		if !errors.Is(err, marketdata.ErrNoData) {
			observability.Warn("history fetch failed", "symbol", symbol, "date", date, "error", err)
		}
	}

	observability.Warn("serving synthetic market data", "symbol", symbol, "date", date)
	timer := metrics.NewTimer()
	record, _ := a.synthetic.Fetch(ctx, symbol, date)
	timer.ObserveSource(string(models.SourceSynthetic))
	return record, models.SourceSynthetic
}

// writeBack stores a fresh gateway record in the database cache and the
// local history archive. Both writes are best effort.
func (a *App) writeBack(ctx context.Context, symbol, date string, record models.MarketRecord) {
	if a.repo != nil {
		ttl := time.Duration(a.cfg.Cache.MarketTTLMinutes) * time.Minute
		if err := a.repo.SetCachedRecord(ctx, symbol, marketCacheKey(date), record, ttl); err != nil {
			observability.Warn("failed to cache market data", "symbol", symbol, "error", err)
		}
	}

	if a.history != nil {
		if err := a.history.Save(symbol, date, record); err != nil {
			observability.Warn("failed to archive market data", "symbol", symbol, "date", date, "error", err)
		}
	}
}

// persist caches the computed result and stores the snapshot row. Both
// writes are best effort; analysis succeeds without a database.
func (a *App) persist(ctx context.Context, snap *models.SentimentSnapshot) {
	if a.repo == nil {
		return
	}

	ttl := time.Duration(a.cfg.Cache.SentimentTTLMinutes) * time.Minute
	if err := a.repo.SetCachedSentiment(ctx, snap.Symbol, sentimentCacheKey(snap.AnalysisDate), &snap.Result, ttl); err != nil {
		observability.Warn("failed to cache sentiment", "symbol", snap.Symbol, "error", err)
	}

	if err := a.repo.SaveSnapshot(ctx, snap); err != nil {
		observability.Warn("failed to persist snapshot", "symbol", snap.Symbol, "error", err)
	}
}

// Cache rows are keyed per trading day.
func marketCacheKey(date string) string {
	return repository.CacheTypeMarketData + ":" + date
}

func sentimentCacheKey(date string) string {
	return repository.CacheTypeSentiment + ":" + date
}

func sourceErrorType(err error) string {
	switch {
	case errors.Is(err, marketdata.ErrNoData):
		return "no_data"
	case errors.Is(err, marketdata.ErrGatewayUnavailable):
		return "gateway_unavailable"
	default:
		return "fetch_failed"
	}
}
