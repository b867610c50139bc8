package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tradequest/config"
	"tradequest/observability"
	"tradequest/repository"
	"tradequest/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	observability.InitLogger(os.Getenv("ENV") == "production")
	observability.InitMetrics()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	if !cfg.HasDatabase() {
		observability.Fatal("DATABASE_URL is required")
	}
	repo, err := repository.NewRepository(ctx, cfg.Database.URL)
	if err != nil {
		observability.Fatal("failed to connect to database", "error", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		observability.Fatal("failed to ensure database schema", "error", err)
	}
	observability.Info("connected to database")

	// Market data provider
	marketData := services.NewMarketDataService(cfg.MarketData.BaseURL)

	app := NewApp(cfg, repo, marketData, nil)

	// Snapshot sync: always persist locally, optionally push to a remote backend
	pushers := []services.SnapshotPusher{&repoPusher{repo: repo, app: app}}
	if cfg.HasSyncBackend() {
		pushers = append(pushers, services.NewHTTPPusher(cfg.Sync.BackendURL))
		observability.Info("remote sync backend configured", "url", cfg.Sync.BackendURL)
	}
	syncWorker := services.NewSyncWorker(pushers...)
	go syncWorker.Run(ctx)
	app.SetSyncer(syncWorker)

	// Price feed driving conditional orders
	feed := services.NewPriceFeed(
		marketData,
		cfg.MarketData.TrackedAssets,
		time.Duration(cfg.MarketData.PollIntervalSeconds)*time.Second,
		app.OnPriceTick,
	)
	go feed.Run(ctx)

	// HTTP server
	handler := NewAPIHandler(app, cfg)
	router := NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		observability.Info("starting server", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Error("server forced to shutdown", "error", err)
	}

	// stop the feed and let the sync worker drain its buffer
	cancel()
	syncWorker.Wait()

	observability.Info("server stopped")
}
