package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"market-pulse/config"
	"market-pulse/internal/app"
	"market-pulse/marketdata"
	"market-pulse/models"
	"market-pulse/observability"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Handler handles HTTP API requests
type Handler struct {
	app      *app.App
	cfg      *config.Config
	upgrader websocket.Upgrader
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{
		app: application,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				allowed := cfg.HTTP.CORSAllowedOrigins
				return allowed == "*" || r.Header.Get("Origin") == allowed
			},
		},
	}
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]interface{}{
		"status": "ok",
		"services": map[string]string{
			"database":         "not_configured",
			"terminal_gateway": "not_configured",
		},
	}
	services := status["services"].(map[string]string)

	if h.app.Repo() != nil {
		if err := h.app.Repo().Health(ctx); err == nil {
			services["database"] = "connected"
		} else {
			services["database"] = "disconnected"
			status["status"] = "degraded"
		}
	}

	if h.app.HasGateway() {
		if h.app.GatewayHealthy(ctx) {
			services["terminal_gateway"] = "connected"
		} else {
			services["terminal_gateway"] = "disconnected"
			status["status"] = "degraded"
		}
	}

	cbStatus := marketdata.GetGlobalRegistry().Status()
	status["circuit_breakers"] = cbStatus
	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	status["market_open"] = h.app.MarketOpen(time.Now())

	h.jsonResponse(w, status)
}

// HandleGetIndices returns the live gateway quotes for all indices
func (h *Handler) HandleGetIndices(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.app.Quotes(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), errorStatus(err))
		return
	}

	h.jsonResponse(w, quotes)
}

// HandleGetOverview returns the ranked market overview
func (h *Handler) HandleGetOverview(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, h.app.Overview(r.Context()))
}

// AnalyzeRequest represents an index analysis request
type AnalyzeRequest struct {
	Symbol string `json:"symbol"`
	Date   string `json:"date,omitempty"`
	// Refresh drops the caches for the index and recomputes today's
	// sentiment from fresh market data, ignoring Date.
	Refresh bool `json:"refresh,omitempty"`
}

// HandleAnalyze runs the scoring chain for one index
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.jsonError(w, "invalid JSON request", http.StatusBadRequest)
		return
	}

	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Symbol == "" {
		h.jsonError(w, "symbol is required", http.StatusBadRequest)
		return
	}
	if err := ValidateSymbol(req.Symbol); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var (
		snap *models.SentimentSnapshot
		err  error
	)
	if req.Refresh {
		snap, err = h.app.Refresh(r.Context(), req.Symbol)
	} else {
		snap, err = h.app.Analyze(r.Context(), req.Symbol, req.Date)
	}
	if err != nil {
		h.jsonError(w, err.Error(), errorStatus(err))
		return
	}

	h.jsonResponse(w, snap)
}

// HandleGetSentiment returns the latest stored snapshot for an index
func (h *Handler) HandleGetSentiment(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	if err := ValidateSymbol(symbol); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := h.app.LatestSnapshot(r.Context(), symbol)
	if err != nil {
		h.jsonError(w, err.Error(), errorStatus(err))
		return
	}
	if snap == nil {
		h.jsonError(w, fmt.Sprintf("no sentiment snapshot for %s", symbol), http.StatusNotFound)
		return
	}

	h.jsonResponse(w, snap)
}

// HandleGetSentimentHistory returns recent snapshots for an index
func (h *Handler) HandleGetSentimentHistory(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	if err := ValidateSymbol(symbol); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	days := ParseIntParam(r, "days", 30)

	snaps, err := h.app.SnapshotHistory(r.Context(), symbol, days)
	if err != nil {
		h.jsonError(w, err.Error(), errorStatus(err))
		return
	}
	if snaps == nil {
		snaps = []models.SentimentSnapshot{}
	}

	h.jsonResponse(w, snaps)
}

// HandleStream upgrades the connection and registers it with the hub.
// Frames are pushed by the refresh loop; client messages are discarded.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		observability.Warn("websocket upgrade failed", "error", err)
		return
	}

	if err := h.app.Hub().Register(conn); err != nil {
		// Register already closed the connection
		return
	}

	go func() {
		defer h.app.Hub().Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Helper functions

// errorStatus maps application errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, app.ErrBusy):
		return http.StatusTooManyRequests
	case errors.Is(err, app.ErrUnknownSymbol), errors.Is(err, app.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrNoDatabase), errors.Is(err, app.ErrNoGateway):
		return http.StatusServiceUnavailable
	case errors.Is(err, marketdata.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, marketdata.ErrGatewayUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.-]+$`)

// ValidateSymbol validates an index symbol
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	if len(symbol) > 10 {
		return fmt.Errorf("symbol too long (max 10 characters)")
	}

	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format (alphanumeric, dots, and dashes only)")
	}

	return nil
}

// ParseIntParam parses a positive integer query parameter
func ParseIntParam(r *http.Request, name string, defaultValue int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultValue
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
