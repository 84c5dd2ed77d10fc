package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialrss/app/api"
	"socialrss/app/cfg"
	"socialrss/app/database"
	"socialrss/app/feed"
	"socialrss/app/scraper"
	"socialrss/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting SocialRSS server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	feedRepo := database.NewFeedRepository(db)

	docs, err := database.NewFileDocumentStore(appCfg.DataDir)
	if err != nil {
		slog.Error("Failed to initialize document store", "dir", appCfg.DataDir, "error", err)
		os.Exit(1)
	}

	client := scraper.NewClient(
		appCfg.UserAgent,
		time.Duration(appCfg.RequestDelay*float64(time.Second)),
		time.Duration(appCfg.RequestTimeout)*time.Second,
	)
	postSource := scraper.New(client)

	manager := feed.NewManager(postSource, feedRepo, docs)

	if appCfg.SeedsFile != "" {
		seeds, err := feed.LoadSeeds(appCfg.SeedsFile)
		if err != nil {
			slog.Error("Failed to load seeds", "file", appCfg.SeedsFile, "error", err)
			os.Exit(1)
		}
		if len(seeds) > 0 {
			registered := manager.RegisterSeeds(context.Background(), seeds)
			slog.Info("Seed feeds registered", "registered", registered, "total", len(seeds))
		}
	}

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(feedRepo, manager)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(manager, scheduler)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
