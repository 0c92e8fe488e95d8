// Package main runs the Casablanca market sentiment HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"market-pulse/config"
	"market-pulse/internal/api"
	"market-pulse/internal/app"
	"market-pulse/marketdata"
	"market-pulse/observability"
	"market-pulse/repository"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	observability.InitLogger(os.Getenv("APP_ENV") == "production")
	observability.InitMetrics()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	ctx := context.Background()

	// Connect the optional services. The server runs without them and
	// falls back to synthetic data, so a missing URL is a warning.
	var repo app.RepositoryInterface
	if cfg.HasDatabase() {
		r, err := repository.NewRepository(ctx, cfg.Database.URL)
		if err != nil {
			observability.Fatal("failed to connect to database", "error", err)
		}
		repo = r
		observability.Info("connected to database")
	} else {
		observability.Warn("DATABASE_URL not set, snapshots and caching disabled")
	}

	var terminal app.TerminalInterface
	if cfg.HasTerminal() {
		terminal = marketdata.NewTerminalClientWithCacheTTL(
			cfg.Terminal.BaseURL,
			cfg.Terminal.APIKey,
			time.Duration(cfg.Terminal.HealthCacheTTLSeconds)*time.Second,
		)
		observability.Info("terminal gateway configured", "url", cfg.Terminal.BaseURL)
	} else {
		observability.Warn("TERMINAL_GATEWAY_URL not set, live market data disabled")
	}

	history, err := marketdata.NewHistoryStore(cfg.Market.HistoryDir)
	if err != nil {
		observability.Fatal("failed to open history archive", "error", err, "dir", cfg.Market.HistoryDir)
	}

	application, err := app.New(cfg, repo, terminal, history)
	if err != nil {
		observability.Fatal("failed to initialize application", "error", err)
	}
	application.Startup(ctx)

	// Create HTTP router
	handler := api.NewHandler(application, cfg)
	router := api.NewRouter(handler, cfg)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Background refresh and cache maintenance
	loopCtx, stopLoops := context.WithCancel(ctx)
	go application.RunRefreshLoop(loopCtx)
	go application.RunMaintenanceLoop(loopCtx)

	// Start server in goroutine
	go func() {
		observability.Info("starting server", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down...")
	stopLoops()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}

	application.Shutdown(shutdownCtx)
	observability.Info("server stopped")
}
