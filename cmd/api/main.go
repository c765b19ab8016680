package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/sweepdreams/curbside-notifications/internal/config"
	"github.com/sweepdreams/curbside-notifications/internal/handler"
	"github.com/sweepdreams/curbside-notifications/internal/health"
	"github.com/sweepdreams/curbside-notifications/internal/infra/push"
	"github.com/sweepdreams/curbside-notifications/internal/infra/runlock"
	"github.com/sweepdreams/curbside-notifications/internal/infra/schedulestore"
	"github.com/sweepdreams/curbside-notifications/internal/infra/subscriptionstore"
	"github.com/sweepdreams/curbside-notifications/internal/infra/sweeprecorder"
	"github.com/sweepdreams/curbside-notifications/internal/observability/logging"
	"github.com/sweepdreams/curbside-notifications/internal/observability/metrics"
	"github.com/sweepdreams/curbside-notifications/internal/observability/middleware"
	"github.com/sweepdreams/curbside-notifications/internal/service/lookup"
	"github.com/sweepdreams/curbside-notifications/internal/service/occurrence"
	"github.com/sweepdreams/curbside-notifications/internal/service/subscription"
	"github.com/sweepdreams/curbside-notifications/internal/service/sweep"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs, err := initObservability(ctx)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	sweepMetrics, err := metrics.NewSweepMetrics()
	if err != nil {
		slog.Error("failed to initialize sweep metrics", slog.String("error", err.Error()))
		return 1
	}

	// Initialize sweep run recorder (InfluxDB for local, BigQuery for gcloud)
	recorderCfg := sweeprecorder.LoadConfig()
	runRecorder, err := sweeprecorder.NewRecorder(ctx, recorderCfg)
	if err != nil {
		slog.Error("failed to initialize sweep run recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := runRecorder.Close(); err != nil {
			slog.Warn("failed to close sweep run recorder", slog.String("error", err.Error()))
		}
	}()

	loc, err := time.LoadLocation(cfg.Sweep.Timezone)
	if err != nil {
		slog.Error("failed to load schedule timezone",
			slog.String("timezone", cfg.Sweep.Timezone),
			slog.String("error", err.Error()),
		)
		return 1
	}
	calc := occurrence.NewCalculator(loc, cfg.Sweep.HorizonMonths, cfg.Sweep.RegulationHorizonDays)

	scheduleClient := schedulestore.NewClient(schedulestore.Settings{
		BaseURL:         cfg.Store.URL,
		APIKey:          cfg.Store.Key,
		ScheduleTable:   cfg.Store.ScheduleTable,
		RegulationTable: cfg.Store.RegulationTable,
		RPCFunction:     cfg.Store.RPCFunction,
	})

	subscriptions, cleanupSubscriptions, err := initSubscriptionStore(cfg)
	if err != nil {
		slog.Error("failed to initialize subscription store", slog.String("error", err.Error()))
		return 1
	}
	if cleanupSubscriptions != nil {
		defer func() {
			if err := cleanupSubscriptions(); err != nil {
				slog.Warn("failed to close subscription store", slog.String("error", err.Error()))
			}
		}()
	}

	gateway, err := push.NewFCMGateway(ctx, push.FCMConfig{
		ProjectID:          cfg.Push.ProjectID,
		ServiceAccountJSON: cfg.Push.ServiceAccountJSON,
		DryRun:             cfg.Push.DryRun,
	})
	if err != nil {
		slog.Error("failed to initialize push gateway", slog.String("error", err.Error()))
		return 1
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}()

	slog.Info("redis connected",
		slog.String("addr", cfg.Redis.Addr),
	)

	lock := runlock.New(redisClient, cfg.Sweep.RunLockTTL)

	sweepService := sweep.NewService(
		subscriptions,
		scheduleClient,
		gateway,
		calc,
		cfg.Sweep.Cadence,
		sweepMetrics,
		runRecorder,
	)
	lookupService := lookup.NewService(scheduleClient, calc)
	subscriptionService := subscription.NewService(subscriptions, scheduleClient, calc)

	locationHandler := handler.NewLocationHandler(lookupService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	sweepHandler := handler.NewSweepHandler(sweepService, lock)

	// Setup router with observability middleware
	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready", "/metrics"},
		Module:      logging.Module("curbside-notifications"),
		TracerName:  "github.com/sweepdreams/curbside-notifications/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	// Health check endpoints
	healthChecker := health.NewChecker(redisClient, scheduleClient, Version)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	// API routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/check-location", locationHandler.HandleCheckLocation)
		v1.POST("/subscriptions", subscriptionHandler.HandleSubscribe)
		v1.GET("/subscriptions/:device_token", subscriptionHandler.HandleStatus)
		v1.DELETE("/subscriptions/:device_token", subscriptionHandler.HandleDelete)
		v1.POST("/sweep", sweepHandler.HandleSweep)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.String("timezone", cfg.Sweep.Timezone),
			slog.Duration("cadence", cfg.Sweep.Cadence),
		)
		serverErr <- srv.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}

// initSubscriptionStore picks local sqlite or the remote subscription table
// depending on configuration.
func initSubscriptionStore(cfg *config.Config) (subscriptionstore.Repository, func() error, error) {
	if path := cfg.Store.SubscriptionSQLitePath; path != "" {
		store, err := subscriptionstore.NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("subscription store initialized",
			slog.String("type", "sqlite"),
			slog.String("path", path),
		)
		return store, store.Close, nil
	}

	client := subscriptionstore.NewClient(subscriptionstore.Settings{
		BaseURL: cfg.Store.URL,
		APIKey:  cfg.Store.Key,
		Table:   cfg.Store.SubscriptionTable,
	})
	slog.Info("subscription store initialized",
		slog.String("type", "rest"),
		slog.String("table", cfg.Store.SubscriptionTable),
	)
	return client, nil, nil
}
