package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/sweepdreams/curbside-notifications/internal/config"
	"github.com/sweepdreams/curbside-notifications/internal/infra/push"
	"github.com/sweepdreams/curbside-notifications/internal/infra/runlock"
	"github.com/sweepdreams/curbside-notifications/internal/infra/schedulestore"
	"github.com/sweepdreams/curbside-notifications/internal/infra/subscriptionstore"
	"github.com/sweepdreams/curbside-notifications/internal/infra/sweeprecorder"
	"github.com/sweepdreams/curbside-notifications/internal/observability/metrics"
	"github.com/sweepdreams/curbside-notifications/internal/service/occurrence"
	"github.com/sweepdreams/curbside-notifications/internal/service/sweep"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	os.Exit(run())
}

// run executes exactly one notification pass. Intended for cron or Cloud
// Scheduler invocation; a held run lock is a skip, not a failure.
func run() int {
	nowFlag := flag.String("now", "", "evaluate the run at this RFC3339 time instead of the wall clock")
	flag.Parse()

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

	now := time.Now()
	if *nowFlag != "" {
		parsed, err := time.Parse(time.RFC3339, *nowFlag)
		if err != nil {
			slog.Error("invalid -now value, expected RFC3339", slog.String("value", *nowFlag))
			return 1
		}
		now = parsed
		slog.Info("using virtual time", slog.Time("virtual_now", now))
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	sweepMetrics, err := metrics.NewSweepMetrics()
	if err != nil {
		slog.Error("failed to initialize sweep metrics", slog.String("error", err.Error()))
		return 1
	}

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

	lock := runlock.New(redisClient, cfg.Sweep.RunLockTTL)
	release, err := lock.Acquire(ctx, uuid.NewString())
	if err != nil {
		if errors.Is(err, runlock.ErrAlreadyLocked) {
			slog.Warn("another notification run is in flight, skipping")
			return 0
		}
		slog.Error("failed to acquire run lock", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := release(ctx); err != nil {
			slog.Warn("failed to release run lock", slog.String("error", err.Error()))
		}
	}()

	sweepService := sweep.NewService(
		subscriptions,
		scheduleClient,
		gateway,
		calc,
		cfg.Sweep.Cadence,
		sweepMetrics,
		runRecorder,
	)

	result, err := sweepService.Run(ctx, now)
	if err != nil {
		slog.Error("notification run failed", slog.String("error", err.Error()))
		return 1
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer flushCancel()
	if err := runRecorder.Flush(flushCtx); err != nil {
		slog.Warn("failed to flush sweep run recorder", slog.String("error", err.Error()))
	}

	slog.Info("notification run completed",
		slog.String("run_id", result.RunID),
		slog.Int("subscriptions", result.Subscriptions),
		slog.Int("sent", result.Sent),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
	)

	if result.Failed > 0 {
		return 2
	}
	return 0
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
