package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geostacks/sitehost/internal/api"
	"github.com/geostacks/sitehost/internal/config"
	"github.com/geostacks/sitehost/internal/engine"
	"github.com/geostacks/sitehost/internal/engine/memory"
	"github.com/geostacks/sitehost/internal/logging"
	"github.com/geostacks/sitehost/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.Log.Level))

	// Initialize the provisioning engine client (or the in-memory engine
	// for local development)
	var engineClient engine.Client
	if cfg.Engine.UseMemory {
		logger.Warn("using in-memory engine; no cloud resources will be created")
		engineClient = memory.New(cfg.AWS.Region)
	} else {
		// One-time bootstrap: plugin install and credential check, fail fast
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := engine.Bootstrap(ctx, cfg.AWS.Region); err != nil {
			cancel()
			logger.Error("engine bootstrap failed", "error", err)
			os.Exit(1)
		}
		cancel()
		engineClient = engine.NewPulumi(cfg.Engine.Project, cfg.AWS.Region, os.Stdout)
	}

	// Initialize the lifecycle controller
	sites := service.NewSiteService(engineClient, cfg.Engine.Project, logger)

	// Create router
	router := api.NewRouter(sites, cfg.Auth.APIKey, logger)

	// Create HTTP server. Applies and destroys are synchronous and
	// unbounded, so no write timeout is set.
	server := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	logger.Info("starting site hosting server", "addr", cfg.Server.Addr(), "project", cfg.Engine.Project)

	// Start server in goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
