package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-grid/internal/database"
	"photo-grid/internal/handlers"
	"photo-grid/internal/indexer"
	"photo-grid/internal/layout"
	"photo-grid/internal/library"
	"photo-grid/internal/lifecycle"
	"photo-grid/internal/logging"
	"photo-grid/internal/memory"
	"photo-grid/internal/metrics"
	"photo-grid/internal/middleware"
	"photo-grid/internal/startup"
	"photo-grid/internal/thumbnail"
	"photo-grid/internal/workers"
)

const (
	metricsInterval = 15 * time.Second
	shutdownTimeout = 30 * time.Second
	maxVipsThreads  = 4
)

func main() {
	startTime := time.Now()
	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	ctx := context.Background()

	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	photoCount, err := db.CountPhotos(ctx)
	if err != nil {
		startup.LogFatal("Failed to read database: %v", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart), photoCount)

	thumbnail.InitVips(workers.VipsConcurrency(maxVipsThreads))
	renderer, err := thumbnail.NewDiskRenderer(config.ThumbnailDir, config.ThumbnailHeight)
	if err != nil {
		startup.LogFatal("Failed to initialize thumbnail renderer: %v", err)
	}

	if config.ImportDir != "" {
		if _, err := indexer.Import(ctx, db, config.ImportDir, indexer.DefaultParallelWalkerConfig()); err != nil {
			startup.LogFatal("Failed to import %s: %v", config.ImportDir, err)
		}
	}

	grid := library.New(gridConfig(config), db, renderer)
	if err := grid.LoadSections(ctx); err != nil {
		startup.LogFatal("Failed to load sections: %v", err)
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if config.ImportDir != "" {
		go watchImportDir(watchCtx, db, grid, config.ImportDir)
	}
	startup.LogGridInit(config, grid.GetStats().TotalSections, thumbnail.IsVipsAvailable())

	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	metrics.InitializeMetrics()
	collector := metrics.NewCollector(grid, db, metricsInterval)
	if config.MetricsEnabled {
		collector.Start()
	}

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           newHandler(handlers.New(grid, db), config),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan struct{})
	go handleShutdown(srv, grid, collector, db, stopWatch, done)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

// gridConfig maps the service configuration onto the grid components.
func gridConfig(config *startup.Config) library.Config {
	cfg := library.DefaultConfig()
	cfg.RowHeight = config.RowHeight
	cfg.ProfileThumbnails = config.ProfileThumbnails
	cfg.Lifecycle = lifecycle.Config{
		PagesToKeep:    config.PagesToKeep,
		PagesToPreload: config.PagesToPreload,
	}
	cfg.Layout = layout.DefaultConfig()
	cfg.Layout.PagesToPreload = config.PagesToPreload
	cfg.Layout.SectionHeadHeight = config.SectionHeadHeight
	cfg.Layout.Profile = config.ProfileLayout
	return cfg
}

// newHandler builds the router and wraps it in the middleware chain.
func newHandler(h *handlers.Handlers, config *startup.Config) http.Handler {
	router := handlers.NewRouter(h, config.MetricsEnabled)
	if config.MetricsEnabled {
		router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	}
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	logged := middleware.Logger(loggingConfig)(router)

	return middleware.Compression(middleware.DefaultCompressionConfig())(logged)
}

// watchImportDir re-imports dir on changes and reloads the section list
// after every import.
func watchImportDir(ctx context.Context, db *database.Database, grid *library.Controller, dir string) {
	err := indexer.Watch(ctx, db, dir, indexer.DefaultParallelWalkerConfig(), indexer.DefaultDebounce, func(indexer.Result) {
		if err := grid.LoadSections(ctx); err != nil {
			logging.Error("Failed to reload sections: %v", err)
		}
	})
	if err != nil {
		logging.Error("Watching %s stopped: %v", dir, err)
	}
}

func handleShutdown(srv *http.Server, grid *library.Controller, collector *metrics.Collector, db *database.Database, stopWatch context.CancelFunc, done chan<- struct{}) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		startup.LogShutdownStepComplete("HTTP server stopped with error: " + err.Error())
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping import watcher")
	stopWatch()
	startup.LogShutdownStepComplete("Import watcher stopped")

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Stopping grid")
	grid.Close()
	startup.LogShutdownStepComplete("Grid stopped")

	startup.LogShutdownStep("Closing database")
	if err := db.Close(); err != nil {
		startup.LogShutdownStepComplete("Database closed with error: " + err.Error())
	} else {
		startup.LogShutdownStepComplete("Database closed")
	}

	thumbnail.ShutdownVips()
	startup.LogShutdownComplete()
}
