package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"market-pulse/config"
	"market-pulse/marketdata"
	"market-pulse/models"
	"market-pulse/observability"
	"market-pulse/overview"
	"market-pulse/sentiment"
	"market-pulse/stream"
)

// Casablanca trading session, minutes since midnight local time.
const (
	marketOpenMinute  = 9 * 60
	marketCloseMinute = 15*60 + 30
)

var (
	// ErrBusy signals that the analysis semaphore is full.
	ErrBusy = errors.New("analysis queue full, too many concurrent requests")

	// ErrNoDatabase signals a repository-backed operation without a database.
	ErrNoDatabase = errors.New("database not configured")

	// ErrNoGateway signals a gateway-backed operation without a terminal client.
	ErrNoGateway = errors.New("terminal gateway not configured")

	// ErrUnknownSymbol signals a symbol outside the configured indices.
	ErrUnknownSymbol = errors.New("unknown index symbol")

	// ErrInvalidDate signals an analysis date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid analysis date")
)

// RepositoryInterface defines the repository operations needed by App
type RepositoryInterface interface {
	Close()
	Health(ctx context.Context) error
	SaveSnapshot(ctx context.Context, snap *models.SentimentSnapshot) error
	GetSnapshot(ctx context.Context, symbol, date string) (*models.SentimentSnapshot, error)
	GetLatestSnapshot(ctx context.Context, symbol string) (*models.SentimentSnapshot, error)
	GetSnapshotHistory(ctx context.Context, symbol string, days int) ([]models.SentimentSnapshot, error)
	GetLatestSnapshots(ctx context.Context) ([]models.SentimentSnapshot, error)
	PruneSnapshots(ctx context.Context, retentionDays int) (int64, error)
	GetCachedRecord(ctx context.Context, symbol, dataType string) (models.MarketRecord, error)
	SetCachedRecord(ctx context.Context, symbol, dataType string, record models.MarketRecord, ttl time.Duration) error
	GetCachedSentiment(ctx context.Context, symbol, dataType string) (*models.SentimentResult, error)
	SetCachedSentiment(ctx context.Context, symbol, dataType string, result *models.SentimentResult, ttl time.Duration) error
	InvalidateAllCacheForSymbol(ctx context.Context, symbol string) error
	CleanExpiredCache(ctx context.Context) (int64, error)
}

// TerminalInterface defines the gateway operations needed by App
type TerminalInterface interface {
	Fetch(ctx context.Context, symbol, date string) (models.MarketRecord, error)
	Snapshot(ctx context.Context) ([]models.IndexQuote, error)
	Healthy(ctx context.Context) bool
	Name() models.SnapshotSource
}

// HistoryInterface defines the local archive operations needed by App
type HistoryInterface interface {
	Fetch(ctx context.Context, symbol, date string) (models.MarketRecord, error)
	Save(symbol, date string, record models.MarketRecord) error
	Name() models.SnapshotSource
}

// App struct holds application dependencies using interfaces for testability
type App struct {
	cfg         *config.Config
	repo        RepositoryInterface
	terminal    TerminalInterface
	history     HistoryInterface
	synthetic   *marketdata.SyntheticSource
	engine      *sentiment.Engine
	hub         *stream.Hub
	location    *time.Location
	analysisSem chan struct{}
}

// New creates a new App application struct. Any of repo, terminal, and
// history may be nil; the analysis chain skips what is not configured
// and the synthetic source guarantees a result.
func New(cfg *config.Config, repo RepositoryInterface, terminal TerminalInterface, history HistoryInterface) (*App, error) {
	scoring, err := buildScoringConfig(cfg)
	if err != nil {
		return nil, err
	}

	location, err := time.LoadLocation(cfg.Market.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid market timezone %q: %w", cfg.Market.Timezone, err)
	}

	return &App{
		cfg:         cfg,
		repo:        repo,
		terminal:    terminal,
		history:     history,
		synthetic:   marketdata.NewSyntheticSource(),
		engine:      sentiment.NewEngine(scoring),
		hub:         stream.NewHub(),
		location:    location,
		analysisSem: make(chan struct{}, cfg.Analysis.ConcurrencyLimit),
	}, nil
}

// buildScoringConfig layers the optional bands file over the defaults.
// Weights always come from the environment, band tables and thresholds
// from the file.
func buildScoringConfig(cfg *config.Config) (*sentiment.Config, error) {
	scoring, err := sentiment.LoadConfig(cfg.Scoring.BandsPath)
	if err != nil {
		return nil, err
	}

	scoring.Weights = sentiment.Weights{
		Breadth:  cfg.Scoring.WeightBreadth,
		Momentum: cfg.Scoring.WeightMomentum,
		Trend:    cfg.Scoring.WeightTrend,
		Volume:   cfg.Scoring.WeightVolume,
	}
	if err := scoring.Validate(); err != nil {
		return nil, err
	}

	return scoring, nil
}

// Startup is called when the app starts
func (a *App) Startup(ctx context.Context) {
	observability.Info("application started",
		"symbols", marketdata.Symbols(),
		"timezone", a.cfg.Market.Timezone,
		"market_open", a.MarketOpen(time.Now()))
}

// Shutdown is called when the app is closing
func (a *App) Shutdown(ctx context.Context) {
	a.hub.Stop()
	if a.repo != nil {
		a.repo.Close()
	}
}

// Repo returns the repository interface for API handlers
func (a *App) Repo() RepositoryInterface {
	return a.repo
}

// Hub returns the websocket hub for the stream endpoint
func (a *App) Hub() *stream.Hub {
	return a.hub
}

// HasGateway reports whether a terminal gateway client is configured.
func (a *App) HasGateway() bool {
	return a.terminal != nil
}

// GatewayHealthy probes the terminal gateway health endpoint.
func (a *App) GatewayHealthy(ctx context.Context) bool {
	return a.terminal != nil && a.terminal.Healthy(ctx)
}

// MarketOpen reports whether the Casablanca exchange is trading at t.
func (a *App) MarketOpen(t time.Time) bool {
	local := t.In(a.location)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	mins := local.Hour()*60 + local.Minute()
	return mins >= marketOpenMinute && mins < marketCloseMinute
}

// Today returns the current trading date in the market timezone.
func (a *App) Today() string {
	return time.Now().In(a.location).Format("2006-01-02")
}

// LatestSnapshot returns the most recent stored snapshot for an index,
// or nil when the index has never been analyzed.
func (a *App) LatestSnapshot(ctx context.Context, symbol string) (*models.SentimentSnapshot, error) {
	if a.repo == nil {
		return nil, ErrNoDatabase
	}
	return a.repo.GetLatestSnapshot(ctx, symbol)
}

// SnapshotHistory returns the stored snapshots for an index over the
// last N days, newest first.
func (a *App) SnapshotHistory(ctx context.Context, symbol string, days int) ([]models.SentimentSnapshot, error) {
	if a.repo == nil {
		return nil, ErrNoDatabase
	}
	return a.repo.GetSnapshotHistory(ctx, symbol, days)
}

// Quotes returns the live gateway snapshot for all configured indices.
func (a *App) Quotes(ctx context.Context) ([]models.IndexQuote, error) {
	if a.terminal == nil {
		return nil, ErrNoGateway
	}
	return a.terminal.Snapshot(ctx)
}

// Overview assembles the ranked market overview from the live gateway
// quotes and the latest stored snapshot per index. Either side may be
// missing; whatever is available is served.
func (a *App) Overview(ctx context.Context) *models.MarketOverview {
	now := time.Now().In(a.location)

	quotes := make(map[string]models.IndexQuote)
	if a.terminal != nil {
		list, err := a.terminal.Snapshot(ctx)
		if err != nil {
			observability.Warn("gateway snapshot unavailable", "error", err)
		}
		for _, q := range list {
			quotes[q.Symbol] = q
		}
	}

	snaps := make(map[string]models.SentimentSnapshot)
	if a.repo != nil {
		list, err := a.repo.GetLatestSnapshots(ctx)
		if err != nil {
			observability.Warn("latest snapshots unavailable", "error", err)
		}
		for _, s := range list {
			snaps[s.Symbol] = s
		}
	}

	var rows []models.IndexOverview
	for _, symbol := range marketdata.Symbols() {
		quote, hasQuote := quotes[symbol]
		snap, hasSnap := snaps[symbol]
		if !hasQuote && !hasSnap {
			continue
		}

		row := models.IndexOverview{Symbol: symbol, Name: marketdata.IndexNames[symbol]}
		if hasQuote {
			row.Last = quote.Last
			row.ChangePct = quote.ChangePct
			row.Volume = quote.Volume
		}
		if hasSnap {
			row.Score = snap.Result.Score
			row.Label = snap.Result.Label
			row.Confidence = snap.Result.Confidence
			row.AnalysisDate = snap.AnalysisDate
			row.Source = snap.Source
		}
		rows = append(rows, row)
	}

	ranked := overview.Rank(rows)
	return &models.MarketOverview{
		Indices:    ranked,
		Summary:    overview.Summarize(ranked, a.engine.Config().LabelFor),
		MarketOpen: a.MarketOpen(now),
		Timestamp:  now,
	}
}

// AnalysisSemCapacity returns the capacity of the analysis semaphore (for testing)
func (a *App) AnalysisSemCapacity() int {
	return cap(a.analysisSem)
}
