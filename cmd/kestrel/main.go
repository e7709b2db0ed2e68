// Kestrel - Fraud analytics over segmented customer data.
// Copyright (c) 2025 opensight.finance
// Licensed under the Apache License 2.0

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

	"github.com/opensight-finance/kestrel/internal/api"
	"github.com/opensight-finance/kestrel/internal/artifacts"
	"github.com/opensight-finance/kestrel/internal/cache"
	"github.com/opensight-finance/kestrel/internal/config"
	"github.com/opensight-finance/kestrel/internal/credentials"
	"github.com/opensight-finance/kestrel/internal/datahub"
	"github.com/opensight-finance/kestrel/internal/domain"
	"github.com/opensight-finance/kestrel/internal/filter"
	"github.com/opensight-finance/kestrel/internal/profile"
	"github.com/opensight-finance/kestrel/internal/scoring"
	"github.com/opensight-finance/kestrel/internal/warehouse"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("KESTREL_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Log startup
	slog.Info("starting kestrel",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"warehouse", cfg.Warehouse.Driver,
		"cache", cfg.Cache.Type,
		"dataset_ttl", cfg.Datasets.TTL,
		"models_dir", cfg.Artifacts.Dir,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Resolve warehouse credentials. The sqlite sandbox needs none; the
	// cloud warehouse refuses to start without them.
	sa, err := credentials.Resolve(cfg.Credentials)
	if err != nil {
		slog.Error("failed to resolve service-account credentials", "error", err)
		os.Exit(1)
	}
	if sa != nil {
		slog.Info("service-account credentials loaded", "client_email", sa.ClientEmail, "project_id", sa.ProjectID)
	}

	// Load model artifacts
	bundle, err := artifacts.Load(cfg.Artifacts.Dir)
	if err != nil {
		slog.Error("failed to load model artifacts", "dir", cfg.Artifacts.Dir, "error", err)
		os.Exit(1)
	}
	slog.Info("model artifacts loaded",
		"dir", cfg.Artifacts.Dir,
		"features", len(bundle.Features),
		"fraud_encoders", len(bundle.FraudEncoders),
		"customer_encoders", len(bundle.CustomerEncoders),
	)

	// Initialize Warehouse
	wh, err := warehouse.New(cfg.Warehouse, sa)
	if err != nil {
		slog.Error("failed to initialize warehouse", "error", err)
		os.Exit(1)
	}
	defer wh.Close()
	slog.Info("warehouse initialized", "driver", cfg.Warehouse.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize dataset hub and load both datasets up front so a bad
	// warehouse fails the boot, not the first request.
	hub := datahub.NewService(wh, cacheImpl, cfg.Datasets.TTL)
	if err := hub.Warm(ctx); err != nil {
		slog.Error("failed to load datasets", "error", err)
		os.Exit(1)
	}
	slog.Info("datasets loaded")

	// Initialize services
	scorer := scoring.NewService(bundle)
	profiles := profile.NewService(hub)

	screens, err := filter.NewCompiler()
	if err != nil {
		slog.Error("failed to initialize screen compiler", "error", err)
		os.Exit(1)
	}

	// Initialize Server
	srv := api.NewServer(cfg.Server, hub, scorer, profiles, screens, Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("kestrel is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("kestrel shutdown complete")
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║               🦅 KESTREL                  ║")
	fmt.Println("  ║        Fraud Analytics Dashboard          ║")
	fmt.Println("  ║       Small hawk, sharp eyes.             ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:    %s\n", version)
	fmt.Printf("  Warehouse:  %s\n", cfg.Warehouse.Driver)
	fmt.Printf("  Cache:      %s\n", cfg.Cache.Type)
	fmt.Printf("  Server:     http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    GET  /                        - Dashboard UI")
	fmt.Println("    GET  /api/v1/overview         - Fraud overview (filters: from, to, segments, screen)")
	fmt.Println("    GET  /api/v1/transactions/top - Top suspicious transactions")
	fmt.Println("    GET  /api/v1/simulator/options- Scoring form options")
	fmt.Println("    POST /api/v1/score            - Score a hypothetical transaction")
	fmt.Println("    GET  /api/v1/customers/{id}   - Customer profile")
	fmt.Println("    GET  /health                  - Health check")
	fmt.Println("    GET  /metrics                 - Prometheus metrics")
	fmt.Println()
}
