package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"market-pulse/models"
	"market-pulse/observability"
)

// TerminalClient talks to the market data terminal gateway over REST.
// All numeric values arrive as JSON strings and are parsed with the
// decimal package before landing in a record.
type TerminalClient struct {
	apiKey        string
	httpClient    *http.Client
	historyClient *http.Client
	baseURL       string
	health        *HealthCache
}

// NewTerminalClient creates a gateway client for the given base URL.
// History requests run against a separate client with a longer timeout.
func NewTerminalClient(baseURL, apiKey string) *TerminalClient {
	return NewTerminalClientWithCacheTTL(baseURL, apiKey, DefaultHealthCacheTTL)
}

// NewTerminalClientWithCacheTTL creates a gateway client with a custom health cache TTL
func NewTerminalClientWithCacheTTL(baseURL, apiKey string, cacheTTL time.Duration) *TerminalClient {
	return &TerminalClient{
		apiKey:        apiKey,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		historyClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		health:        NewHealthCache(cacheTTL),
	}
}

// terminalFields maps record fields to gateway field identifiers, in
// the order they appear on the wire.
var terminalFields = []struct {
	Field   models.Field
	Gateway string
}{
	{models.FieldClose, "PX_LAST"},
	{models.FieldHigh, "PX_HIGH"},
	{models.FieldLow, "PX_LOW"},
	{models.FieldOpen, "PX_OPEN"},
	{models.FieldVolume, "VOLUME"},
	{models.FieldAdvances, "ADVANCING_ISSUES"},
	{models.FieldDeclines, "DECLINING_ISSUES"},
	{models.FieldUnchanged, "UNCHANGED_ISSUES"},
	{models.FieldTotalIssues, "TOT_TRADED_ISSUES"},
	{models.FieldNewHighs, "NEW_HIGH_52W"},
	{models.FieldNewLows, "NEW_LOW_52W"},
	{models.FieldRSI, "RSI_14D"},
	{models.FieldMACD, "MACD"},
	{models.FieldMACDSignal, "MACD_SIGNAL"},
	{models.FieldStochastic, "STOCHASTIC_OSCILLATOR"},
	{models.FieldVWAP, "EQY_WEIGHTED_AVG_PX"},
}

// maPeriods maps moving average history windows to record fields.
var maPeriods = map[int]models.Field{
	20:  models.FieldMA20,
	50:  models.FieldMA50,
	200: models.FieldMA200,
}

const maxMAPeriod = 200

// ReferenceResponse is the gateway's single-day reference data payload.
type ReferenceResponse struct {
	Ticker string            `json:"ticker"`
	Date   string            `json:"date"`
	Fields map[string]string `json:"fields"`
}

// HistoryResponse is the gateway's historical bars payload. Bars are
// ordered oldest first.
type HistoryResponse struct {
	Ticker string `json:"ticker"`
	Bars   []struct {
		Date  string `json:"date"`
		Close string `json:"PX_LAST"`
	} `json:"bars"`
}

// SnapshotResponse is the gateway's multi-index snapshot payload.
type SnapshotResponse struct {
	Quotes []struct {
		Ticker    string `json:"ticker"`
		Last      string `json:"PX_LAST"`
		ChangePct string `json:"CHG_PCT_1D"`
		Volume    string `json:"VOLUME"`
	} `json:"quotes"`
}

// Name identifies the gateway on snapshots and metrics.
func (c *TerminalClient) Name() models.SnapshotSource {
	return models.SourceTerminal
}

// Fetch returns the full market record for an index on the given date.
// Moving averages come from a separate history request; their absence
// degrades the trend signal but never fails the fetch.
func (c *TerminalClient) Fetch(ctx context.Context, symbol, date string) (models.MarketRecord, error) {
	ticker, ok := IndexTickers[symbol]
	if !ok {
		return nil, fmt.Errorf("unknown index symbol %q", symbol)
	}

	record, err := WithCircuitBreaker(ctx, BreakerTerminal, func() (models.MarketRecord, error) {
		var rec models.MarketRecord
		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			var ferr error
			rec, ferr = c.fetchReference(ctx, ticker, date)
			return ferr
		})
		return rec, err
	})
	if err != nil {
		return nil, err
	}

	if mas, err := c.MovingAverages(ctx, symbol, date); err != nil {
		observability.Warn("moving averages unavailable",
			"symbol", symbol,
			"error", err)
	} else {
		for field, value := range mas {
			record.Set(field, value)
		}
	}

	record.DeriveChangePct()
	return record, nil
}

func (c *TerminalClient) fetchReference(ctx context.Context, ticker, date string) (models.MarketRecord, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest("terminal", "reference_data")
	timer := metrics.NewTimer()

	fields := make([]string, 0, len(terminalFields))
	for _, f := range terminalFields {
		fields = append(fields, f.Gateway)
	}

	params := url.Values{}
	params.Set("ticker", ticker)
	params.Set("fields", strings.Join(fields, ","))
	if date != "" {
		wire, err := gatewayDate(date)
		if err != nil {
			return nil, err
		}
		params.Set("date", wire)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/reference?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create reference request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordExternalAPIError("terminal", "reference_data", "transport")
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		metrics.RecordExternalAPIError("terminal", "reference_data", fmt.Sprintf("status_%d", resp.StatusCode))
		return nil, fmt.Errorf("%w: gateway returned status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var ref ReferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
		metrics.RecordExternalAPIError("terminal", "reference_data", "decode")
		return nil, fmt.Errorf("failed to decode reference data: %w", err)
	}

	record := models.NewMarketRecord()
	for _, f := range terminalFields {
		raw, ok := ref.Fields[f.Gateway]
		if !ok || raw == "" {
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			log.Printf("Warning: failed to parse %s value '%s': %v", f.Gateway, raw, err)
			continue
		}
		record.Set(f.Field, value.InexactFloat64())
	}

	if !record.Has(models.FieldClose) {
		return nil, ErrNoData
	}

	timer.ObserveExternalAPI("terminal", "reference_data")
	return record, nil
}

// MovingAverages computes simple moving averages for an index from the
// gateway's close history. Periods without enough bars are omitted.
func (c *TerminalClient) MovingAverages(ctx context.Context, symbol, date string) (map[models.Field]float64, error) {
	ticker, ok := IndexTickers[symbol]
	if !ok {
		return nil, fmt.Errorf("unknown index symbol %q", symbol)
	}

	end := time.Now()
	if date != "" {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("invalid analysis date %q: %w", date, err)
		}
		end = t
	}
	// Calendar buffer so the window always spans enough trading days.
	start := end.AddDate(0, 0, -maxMAPeriod*3)

	closes, err := WithCircuitBreaker(ctx, BreakerTerminal, func() ([]float64, error) {
		var out []float64
		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			var ferr error
			out, ferr = c.fetchHistory(ctx, ticker, start, end)
			return ferr
		})
		return out, err
	})
	if err != nil {
		return nil, err
	}

	averages := make(map[models.Field]float64, len(maPeriods))
	for period, field := range maPeriods {
		if len(closes) < period {
			continue
		}
		sum := 0.0
		for _, v := range closes[len(closes)-period:] {
			sum += v
		}
		averages[field] = sum / float64(period)
	}
	return averages, nil
}

func (c *TerminalClient) fetchHistory(ctx context.Context, ticker string, start, end time.Time) ([]float64, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest("terminal", "history")
	timer := metrics.NewTimer()

	params := url.Values{}
	params.Set("ticker", ticker)
	params.Set("fields", "PX_LAST")
	params.Set("start", start.Format("20060102"))
	params.Set("end", end.Format("20060102"))

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/history?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create history request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.historyClient.Do(req)
	if err != nil {
		metrics.RecordExternalAPIError("terminal", "history", "transport")
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordExternalAPIError("terminal", "history", fmt.Sprintf("status_%d", resp.StatusCode))
		return nil, fmt.Errorf("%w: gateway returned status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var hist HistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&hist); err != nil {
		metrics.RecordExternalAPIError("terminal", "history", "decode")
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}

	closes := make([]float64, 0, len(hist.Bars))
	for _, bar := range hist.Bars {
		value, err := decimal.NewFromString(bar.Close)
		if err != nil {
			log.Printf("Warning: failed to parse close '%s' for %s: %v", bar.Close, bar.Date, err)
			continue
		}
		closes = append(closes, value.InexactFloat64())
	}

	timer.ObserveExternalAPI("terminal", "history")
	return closes, nil
}

// Snapshot returns current quotes for every configured index.
func (c *TerminalClient) Snapshot(ctx context.Context) ([]models.IndexQuote, error) {
	return WithCircuitBreaker(ctx, BreakerTerminal, func() ([]models.IndexQuote, error) {
		var quotes []models.IndexQuote
		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			var ferr error
			quotes, ferr = c.fetchSnapshot(ctx)
			return ferr
		})
		return quotes, err
	})
}

func (c *TerminalClient) fetchSnapshot(ctx context.Context) ([]models.IndexQuote, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest("terminal", "snapshot")
	timer := metrics.NewTimer()

	tickers := make([]string, 0, len(IndexTickers))
	for _, symbol := range Symbols() {
		tickers = append(tickers, IndexTickers[symbol])
	}

	params := url.Values{}
	params.Set("tickers", strings.Join(tickers, ","))

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/snapshot?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordExternalAPIError("terminal", "snapshot", "transport")
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordExternalAPIError("terminal", "snapshot", fmt.Sprintf("status_%d", resp.StatusCode))
		return nil, fmt.Errorf("%w: gateway returned status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var snap SnapshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		metrics.RecordExternalAPIError("terminal", "snapshot", "decode")
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	quotes := make([]models.IndexQuote, 0, len(snap.Quotes))
	for _, q := range snap.Quotes {
		symbol := strings.TrimSuffix(q.Ticker, " Index")
		name, ok := IndexNames[symbol]
		if !ok {
			log.Printf("Warning: unknown ticker '%s' in snapshot, skipping", q.Ticker)
			continue
		}

		last, _ := decimal.NewFromString(q.Last)
		changePct, _ := decimal.NewFromString(q.ChangePct)
		var volume int64
		if q.Volume != "" {
			volume, err = strconv.ParseInt(q.Volume, 10, 64)
			if err != nil {
				log.Printf("Warning: failed to parse volume '%s': %v", q.Volume, err)
			}
		}

		quotes = append(quotes, models.IndexQuote{
			Symbol:    symbol,
			Name:      name,
			Last:      last,
			ChangePct: changePct,
			Volume:    volume,
			Timestamp: time.Now(),
		})
	}

	timer.ObserveExternalAPI("terminal", "snapshot")
	return quotes, nil
}

// Healthy reports whether the gateway answers its health endpoint. The
// result is cached briefly to keep health checks cheap.
func (c *TerminalClient) Healthy(ctx context.Context) bool {
	if available, valid := c.health.Get(); valid {
		return available
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		c.health.Set(false)
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.health.Set(false)
		return false
	}
	defer resp.Body.Close()

	available := resp.StatusCode == http.StatusOK
	c.health.Set(available)
	return available
}

// InvalidateHealth drops the cached health probe.
func (c *TerminalClient) InvalidateHealth() {
	c.health.Invalidate()
}

func gatewayDate(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid analysis date %q: %w", date, err)
	}
	return t.Format("20060102"), nil
}
