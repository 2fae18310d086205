// Package main is the entry point for the AutoPress publishing server.
// It loads configuration, connects to services, starts the background
// scheduler, and serves the JSON API with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autopress/internal/cache"
	"autopress/internal/config"
	"autopress/internal/database"
	"autopress/internal/generation"
	"autopress/internal/handlers"
	"autopress/internal/publisher"
	"autopress/internal/router"
	"autopress/internal/scheduler"
	"autopress/internal/store"
	"autopress/internal/wordpress"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (limit snapshots + leadership lease). The app works
	// without it; sweeps then run on every instance and limits always hit
	// the database.
	valkeyClient, verr := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if verr != nil {
		slog.Warn("valkey unavailable, running without cache and leadership lease", "error", verr)
		valkeyClient = nil
	} else {
		defer valkeyClient.Close()
	}

	// Initialize data stores.
	siteStore := store.NewSiteStore(db)
	scheduleStore := store.NewScheduleStore(db)
	postStore := store.NewPostStore(db)
	generationStore := store.NewGenerationStore(db)

	// Remote publishing stack.
	wpClient := wordpress.New(cfg.PublishTimeout)
	var limitCache *cache.LimitCache
	if valkeyClient != nil {
		limitCache = cache.NewLimitCache(valkeyClient, cache.DefaultLimitTTL)
	}
	limits := publisher.NewLimitGuard(postStore, scheduleStore, limitCache)
	executor := publisher.NewExecutor(postStore, siteStore, limits, wpClient)

	// Generation collaborator webhook (optional).
	var dispatcher generation.Dispatcher
	if cfg.GenerationWebhookURL != "" {
		dispatcher = generation.NewWebhookDispatcher(cfg.GenerationWebhookURL, 0)
		slog.Info("generation webhook configured", "url", cfg.GenerationWebhookURL)
	} else {
		slog.Warn("generation webhook not configured, generation sweep disabled")
	}

	// Leadership: with Valkey, a lease makes sure only one instance sweeps.
	var leader scheduler.Leadership
	if valkeyClient != nil {
		leader = scheduler.NewValkeyLease(valkeyClient, "", cfg.LeaderLeaseTTL)
	}

	// Start the background sweeps.
	sched := scheduler.New(scheduler.Config{
		SweepInterval:       cfg.SweepInterval,
		GenerationInterval:  cfg.GenerationInterval,
		MaintenanceInterval: cfg.MaintenanceInterval,
		BatchSize:           cfg.SweepBatchSize,
		ProcessingMaxAge:    cfg.ProcessingMaxAge,
	}, postStore, siteStore, generationStore, executor, dispatcher, leader)
	sched.Start()

	// Create handler group and router.
	api := handlers.New(siteStore, scheduleStore, postStore, generationStore, limits, executor)
	r := router.New(api, cfg.APIToken)

	// Create the HTTP server with sensible timeouts. WriteTimeout must
	// accommodate synchronous publish calls against slow remote sites.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.PublishTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Stop the sweeps first so no new publish starts while draining.
	sched.Stop()

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
