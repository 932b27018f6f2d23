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

	"github.com/leonardovviana/conecta-monitor/app/api"
	"github.com/leonardovviana/conecta-monitor/app/cfg"
	"github.com/leonardovviana/conecta-monitor/app/classifier"
	"github.com/leonardovviana/conecta-monitor/app/database"
	"github.com/leonardovviana/conecta-monitor/app/feed"
	"github.com/leonardovviana/conecta-monitor/app/monitor"
	"github.com/leonardovviana/conecta-monitor/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
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

	slog.Info("Starting Conecta Monitor server", "version", appCfg.Version)

	// Database connection
	db, err := database.NewConnection(
		appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Connected to database")

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations applied", "version", version, "dirty", dirty)

	// Load monitor configurations
	configCache := monitor.NewConfigCache(appCfg.MonitorsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load monitor configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Monitor configurations loaded", "count", configCache.GetConfigCount())

	// Initialize repositories
	monitorRepo := database.NewMonitorRepository(db)
	mentionRepo := database.NewMentionRepository(db)

	// Initialize core components
	httpClient := &http.Client{Timeout: 60 * time.Second}
	fetcher := feed.NewFetcher(httpClient, appCfg.RelayURL, appCfg.FeedBaseURL,
		appCfg.FeedLanguage, appCfg.FeedCountry, appCfg.FeedEdition, appCfg.UserAgent)
	parser := feed.NewParser()
	contentExtractor := feed.NewContentExtractor()

	defaultRules := classifier.DefaultRules()
	if appCfg.RulesFile != "" {
		defaultRules, err = classifier.LoadRules(appCfg.RulesFile)
		if err != nil {
			slog.Error("Failed to load keyword rules", "rules_file", appCfg.RulesFile, "error", err)
			os.Exit(1)
		}
		slog.Info("Keyword rules loaded", "rules_file", appCfg.RulesFile)
	}

	// Initialize and start scheduler
	scheduler := tasks.NewScheduler(configCache, monitorRepo, mentionRepo,
		httpClient, fetcher, parser, contentExtractor, defaultRules)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)

	// Initialize HTTP server
	handler := api.NewHandler(configCache, monitorRepo, mentionRepo, fetcher, parser, defaultRules, scheduler)
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

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	// Graceful shutdown
	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
