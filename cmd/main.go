package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vega/internal/adapters/config"
	"vega/internal/adapters/errors/noop"
	"vega/internal/adapters/errors/sentry"
	"vega/internal/adapters/postgres"
	"vega/internal/adapters/redis"
	"vega/internal/adapters/schwab"
	"vega/internal/api"
	"vega/internal/api/health"
	"vega/internal/domain/marketdata"
	"vega/internal/domain/tracking"
	"vega/internal/metrics"
	pgrepo "vega/internal/repository/postgres"
	redisrepo "vega/internal/repository/redis"
	"vega/internal/services/analysis"
	"vega/pkg/errors"
	"vega/pkg/logger"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Initialize metrics
	metrics.Init()

	// Initialize databases
	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Databases initialized")

	// Market data provider and cache
	provider := schwab.NewClient(cfg.Provider, schwab.StaticToken(cfg.Provider.AccessToken))
	marketCache := redisrepo.NewMarketCache(redisClient, cfg.Provider.CacheTTL)
	marketSvc := marketdata.NewService(provider, marketCache)

	// Repositories and services
	trackingRepo := pgrepo.NewTrackingRepository(pgClient.DB())
	trackingSvc := tracking.NewService(trackingRepo, marketSvc)
	analysisSvc := analysis.NewService(marketSvc, cfg.Engine)

	// Keep the active-positions gauge warm
	go pollActiveGauge(trackingRepo, log)

	// HTTP server
	healthHandler := health.New(log, cfg.App.Name, version, map[string]health.Checker{
		"postgres": pgClient,
		"redis":    redisClient,
	})
	handler := api.NewHandler(analysisSvc, trackingSvc)
	server := api.NewServer(api.ServerConfig{
		Addr:        cfg.HTTP.Addr,
		ServiceName: cfg.App.Name,
		Version:     version,
	}, handler, healthHandler, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	log.Info("System initialized successfully")

	// Wait for shutdown signal
	waitForShutdown(server, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// pollActiveGauge refreshes the active tracked-suggestions gauge periodically
func pollActiveGauge(repo *pgrepo.TrackingRepository, log *logger.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		count, err := repo.CountActive(ctx)
		cancel()
		if err != nil {
			log.Debugf("active gauge refresh failed: %v", err)
			continue
		}
		metrics.TrackedActive.Set(float64(count))
	}
}

// waitForShutdown waits for a shutdown signal and drains cleanly
func waitForShutdown(server *api.Server, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Infof("Received signal %s, shutting down...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Shutdown error: %v", err)
	}

	if err := errorTracker.Flush(ctx); err != nil {
		log.Warnf("Error tracker flush failed: %v", err)
	}

	log.Info("Shutdown complete")
}
