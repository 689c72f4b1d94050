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

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/accidents"
	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/cachelayer"
	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/elevation"
	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/kernel"
	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/orchestrator"
	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/weather"
	"github.com/sebastianfrazier26/safeascent-predictor/internal/httpapi"
	"github.com/sebastianfrazier26/safeascent-predictor/pkg/cache"
	"github.com/sebastianfrazier26/safeascent-predictor/pkg/config"
	"github.com/sebastianfrazier26/safeascent-predictor/pkg/health"
	"github.com/sebastianfrazier26/safeascent-predictor/pkg/metrics"
	"github.com/sebastianfrazier26/safeascent-predictor/pkg/postgres"
)

func main() {
	cfg := config.NewConfig()
	cfg.ServiceName = "safeascent-predictor"
	cfg.LoadFromEnv()
	cfg.LoadFromFlags()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	logger.Info("Starting SafeAscent Predictor",
		"redis", cfg.RedisAddress(),
		"postgres", fmt.Sprintf("%s:%d/%s", cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB),
		"api_port", cfg.APIPort,
		"health_port", cfg.HealthPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	pgClient := postgres.NewClient(cfg, logger)
	if err := pgClient.Connect(ctx); err != nil {
		logger.Error("Failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	cacheClient := cache.NewClient(cfg, logger)
	metricsCollectors := metrics.New()

	cacheLayer, err := cachelayer.New(cfg.LocalCacheSize, cacheClient, metricsCollectors, logger)
	if err != nil {
		logger.Error("Failed to build cache layer", "error", err)
		os.Exit(1)
	}

	kernelConfig, err := kernel.NewDefaultConfig(cfg.RouteTypeMatrixPath)
	if err != nil {
		logger.Error("Failed to load route-type matrix", "error", err)
		os.Exit(1)
	}

	weatherProvider := weather.NewHTTPProvider(weather.HTTPProviderConfig{
		BaseURL:      cfg.WeatherProviderURL,
		APIKey:       cfg.WeatherProviderAPIKey,
		Timeout:      cfg.WeatherTimeout,
		RetryMax:     cfg.WeatherRetryAttempts,
		RetryBase:    cfg.WeatherRetryBaseDelay,
		RetryMaxWait: cfg.WeatherRetryMaxDelay,
		BreakerOn:    cfg.WeatherBreakerEnabled,
	}, metricsCollectors, logger)

	weatherFetcher := weather.NewFetcher(
		weatherProvider,
		cacheLayer,
		cachelayer.ForecastKey,
		cachelayer.StatsKey,
		cfg.ForecastTTL,
		cfg.StatsTTL,
		logger,
	)

	elevationResolver := elevation.NewHTTPResolver(cfg.ElevationProviderURL, cfg.ElevationTimeout, logger)
	accidentStore := accidents.NewStore(pgClient, logger)

	orch := orchestrator.New(kernelConfig, accidentStore, weatherFetcher, elevationResolver, cacheLayer, orchestrator.Options{
		NormalizationK:               cfg.NormalizationK,
		LocalRadiusKM:                cfg.LocalRadiusKM,
		StrictRouteTypeThreshold:     cfg.StrictRouteTypeThreshold,
		WeatherPower:                 cfg.WeatherPower,
		SimilarityExclusionThreshold: cfg.SimilarityExclusionThres,
		PredictionTTL:                cfg.PredictionTTL,
		UseVectorizedAggregator:      cfg.VectorizedAggregator,
		VerifyAggregator:             cfg.VerifyAggregator,
	}, logger)

	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.APIPort),
		Handler:      httpapi.NewRouter(orch, logger),
		ReadTimeout:  cfg.RequestDeadline,
		WriteTimeout: cfg.RequestDeadline + 2*time.Second,
	}

	healthChecker := health.NewChecker(pgClient, cacheClient, weatherProvider.Breaker(), logger)
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", healthChecker.HandlerFunc())
	healthMux.HandleFunc("/readyz", healthChecker.DetailedHandlerFunc())
	healthMux.Handle("/metrics", promhttp.Handler())
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HealthPort),
		Handler: healthMux,
	}

	serverErr := make(chan error, 2)
	go func() {
		logger.Info("Prediction API listening", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("api server: %w", err)
		}
	}()
	go func() {
		logger.Info("Health/metrics server listening", "addr", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("health server: %w", err)
		}
	}()

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		logger.Error("Server failed", "error", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server shutdown error", "error", err)
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Health server shutdown error", "error", err)
	}
	if err := pgClient.Disconnect(); err != nil {
		logger.Error("Postgres disconnect error", "error", err)
	}
	if err := cacheClient.Close(); err != nil {
		logger.Error("Cache disconnect error", "error", err)
	}

	logger.Info("SafeAscent Predictor stopped")
}
