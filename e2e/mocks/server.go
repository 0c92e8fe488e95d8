// Package mocks provides an HTTP mock of the terminal gateway for E2E tests.
package mocks

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// GatewayServer provides configurable mock responses for the terminal
// gateway endpoints: /reference, /history, /snapshot and /health.
type GatewayServer struct {
	mu     sync.RWMutex
	server *httptest.Server

	// Response configurations
	references map[string]ReferenceData // key: "ticker|wireDate", "" date matches any
	history    map[string]HistoryData   // key: ticker
	snapshot   SnapshotData

	// Error injection
	down   bool // every endpoint answers 503
	apiKey string

	// Request tracking for assertions
	requestLog []RequestLog
}

// RequestLog records incoming requests for test assertions.
type RequestLog struct {
	Method string
	Path   string
	Query  string
}

// NewGatewayServer creates a mock gateway preloaded with a bullish MASI
// session so a fresh harness can analyze without per-test setup.
func NewGatewayServer() *GatewayServer {
	g := &GatewayServer{
		references: make(map[string]ReferenceData),
		history:    make(map[string]HistoryData),
		requestLog: make([]RequestLog, 0),
	}
	g.setDefaults()
	g.server = httptest.NewServer(g)
	return g
}

func (g *GatewayServer) setDefaults() {
	g.SetReference("MASI Index", "", BullishReferenceFields())
	g.SetHistoryCloses("MASI Index", FlatCloses(13400, 220), "2026-08-21")
	g.SetSnapshot(SnapshotData{Quotes: []SnapshotQuote{
		{Ticker: "MASI Index", Last: "13450.25", ChangePct: "0.38", Volume: "2150000"},
		{Ticker: "MADEX Index", Last: "10980.10", ChangePct: "0.21", Volume: "1740000"},
	}})
}

// URL returns the mock gateway's base URL.
func (g *GatewayServer) URL() string {
	return g.server.URL
}

// Close shuts down the mock gateway.
func (g *GatewayServer) Close() {
	g.server.Close()
}

// ServeHTTP implements http.Handler to route requests to the endpoint handlers.
func (g *GatewayServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.requestLog = append(g.requestLog, RequestLog{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
	})
	down := g.down
	g.mu.Unlock()

	if down {
		http.Error(w, "gateway unavailable", http.StatusServiceUnavailable)
		return
	}

	switch r.URL.Path {
	case "/reference":
		g.handleReference(w, r)
	case "/history":
		g.handleHistory(w, r)
	case "/snapshot":
		g.handleSnapshot(w, r)
	case "/health":
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (g *GatewayServer) handleReference(w http.ResponseWriter, r *http.Request) {
	if !g.authorized(w, r) {
		return
	}

	ticker := r.URL.Query().Get("ticker")
	date := r.URL.Query().Get("date")

	g.mu.RLock()
	ref, ok := g.references[ticker+"|"+date]
	if !ok {
		ref, ok = g.references[ticker+"|"]
	}
	g.mu.RUnlock()

	if !ok {
		http.Error(w, "no data for ticker", http.StatusNotFound)
		return
	}

	if ref.Date == "" {
		ref.Date = date
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ref)
}

func (g *GatewayServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !g.authorized(w, r) {
		return
	}

	ticker := r.URL.Query().Get("ticker")

	g.mu.RLock()
	hist, ok := g.history[ticker]
	g.mu.RUnlock()

	if !ok {
		hist = HistoryData{Ticker: ticker, Bars: []HistoryBar{}}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(hist)
}

func (g *GatewayServer) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if !g.authorized(w, r) {
		return
	}

	g.mu.RLock()
	snap := g.snapshot
	g.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (g *GatewayServer) authorized(w http.ResponseWriter, r *http.Request) bool {
	g.mu.RLock()
	key := g.apiKey
	g.mu.RUnlock()

	if key != "" && r.Header.Get("X-Api-Key") != key {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

// SetReference configures the reference payload for a ticker. An empty
// date matches requests for any day.
func (g *GatewayServer) SetReference(ticker, date string, fields map[string]string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.references[ticker+"|"+date] = ReferenceData{Ticker: ticker, Date: date, Fields: fields}
}

// RemoveReference drops all reference payloads for a ticker so requests
// answer 404.
func (g *GatewayServer) RemoveReference(ticker string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key := range g.references {
		if strings.HasPrefix(key, ticker+"|") {
			delete(g.references, key)
		}
	}
}

// SetHistoryCloses configures the close history for a ticker, dating the
// bars backward one calendar day at a time from endDate.
func (g *GatewayServer) SetHistoryCloses(ticker string, closes []float64, endDate string) {
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		end = time.Now()
	}

	bars := make([]HistoryBar, len(closes))
	for i, c := range closes {
		day := end.AddDate(0, 0, i-len(closes)+1)
		bars[i] = HistoryBar{
			Date:  day.Format("20060102"),
			Close: fmt.Sprintf("%.2f", c),
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.history[ticker] = HistoryData{Ticker: ticker, Bars: bars}
}

// SetSnapshot configures the multi-index snapshot payload.
func (g *GatewayServer) SetSnapshot(snap SnapshotData) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.snapshot = snap
}

// SetDown makes every endpoint answer 503 until cleared.
func (g *GatewayServer) SetDown(down bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.down = down
}

// RequireAPIKey makes data endpoints reject requests without the key.
func (g *GatewayServer) RequireAPIKey(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.apiKey = key
}

// GetRequestLog returns all logged requests for assertions.
func (g *GatewayServer) GetRequestLog() []RequestLog {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]RequestLog{}, g.requestLog...)
}

// ClearRequestLog clears the request log.
func (g *GatewayServer) ClearRequestLog() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requestLog = make([]RequestLog, 0)
}

// RequestCount returns how many requests hit the given path.
func (g *GatewayServer) RequestCount(path string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	count := 0
	for _, entry := range g.requestLog {
		if entry.Path == path {
			count++
		}
	}
	return count
}

// FlatCloses returns n closes hovering around base with a gentle upward
// drift, enough bars for every moving average window.
func FlatCloses(base float64, n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = base + float64(i)*0.5
	}
	return closes
}
