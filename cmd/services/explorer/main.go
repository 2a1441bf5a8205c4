package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/soltixdb/tsexplorer/internal/cache"
	"github.com/soltixdb/tsexplorer/internal/config"
	"github.com/soltixdb/tsexplorer/internal/datasource"
	"github.com/soltixdb/tsexplorer/internal/handlers"
	"github.com/soltixdb/tsexplorer/internal/logging"
	"github.com/soltixdb/tsexplorer/internal/queue"
	"github.com/soltixdb/tsexplorer/internal/router"
	"github.com/soltixdb/tsexplorer/internal/services"
	"github.com/soltixdb/tsexplorer/internal/timeseries"
	"github.com/soltixdb/tsexplorer/internal/utils"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	handlers.Version = Version
	logger.Info("Explorer service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// Result cache (configurable backend)
	logger.Info("Initializing result cache", "type", cfg.Cache.Type, "ttl", cfg.Cache.TTL)
	cacheStore, err := cache.NewStoreFromConfig(cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to initialize cache", "error", err)
	}
	defer func() { _ = cacheStore.Close() }()

	// Event queue (configurable backend)
	logger.Info("Connecting to event queue", "type", cfg.Events.Type, "url", cfg.Events.URL)
	queueClient, err := queue.NewQueue(cfg.Events)
	if err != nil {
		logger.Fatal("Failed to connect to event queue", "error", err)
	}
	defer func() { _ = queueClient.Close() }()

	var emitter *queue.Emitter
	if !queue.IsNop(queueClient) {
		emitter = queue.NewEmitter(queueClient, cfg.Events.SubjectPrefix, logger)
		if cfg.Events.Audit {
			subject := queue.Subject(cfg.Events.SubjectPrefix, queue.EventExploreCompleted)
			if err := queueClient.Subscribe(subject, queue.AuditHandler(logger)); err != nil {
				logger.Fatal("Failed to subscribe audit log", "subject", subject, "error", err)
			}
			logger.Info("Audit log subscribed", "subject", subject)
		}
	}

	defaultGranularity, err := timeseries.ParseGranularity(cfg.Dashboard.DefaultGranularity)
	if err != nil {
		logger.Fatal("Invalid default granularity", "error", err)
	}

	// Services
	store := services.NewDatasetStore(cfg.Source.Location())
	datasetService := services.NewDatasetService(logger, store, cacheStore, emitter)
	explorerService := services.NewExplorerService(logger, store, cacheStore, emitter, services.ExplorerOptions{
		DefaultGranularity: defaultGranularity,
		MaxTableRows:       cfg.Dashboard.MaxTableRows,
	})

	loadDefaultDataset(logger, cfg.Source, datasetService)

	// Log authentication status
	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, datasetService, explorerService, cfg)

	// Start server in goroutine
	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

// loadDefaultDataset loads the configured source. A missing source is not
// fatal: datasets can still be uploaded.
func loadDefaultDataset(logger *logging.Logger, cfg config.SourceConfig, datasetService *services.DatasetService) {
	src, err := datasource.FromConfig(cfg, nil)
	if err != nil {
		logger.Fatal("Invalid data source configuration", "error", err)
	}
	if src == nil {
		logger.Info("No default data source configured")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), utils.StartupLoadTimeout)
	defer cancel()

	if _, err := datasetService.Load(ctx, services.DefaultDatasetID, src); err != nil {
		logger.Warn("Default dataset not loaded; upload a CSV to start exploring",
			"source", datasource.Describe(src), "error", err)
	}
}
