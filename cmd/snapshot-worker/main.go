package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"stocktally-backend/internal/cron"
	"stocktally-backend/internal/history"
	"stocktally-backend/internal/items"
	"stocktally-backend/internal/users"
	"stocktally-backend/pkg/config"
	"stocktally-backend/pkg/db"
	"stocktally-backend/pkg/logger"
	"stocktally-backend/pkg/metrics"
	"stocktally-backend/pkg/migrate"
	"stocktally-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "snapshot-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "snapshot-worker"

	logg = logger.New(logger.Options{
		ServiceName: "snapshot-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	location, err := time.LoadLocation(cfg.Snapshot.Timezone)
	if err != nil {
		logg.Error(context.Background(), "invalid snapshot timezone", err)
		os.Exit(1)
	}

	itemRepo := items.NewRepository(dbClient.DB())
	historyService, err := history.NewService(history.NewRepository(dbClient.DB()), itemRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create history service", err)
		os.Exit(1)
	}

	snapshotJob, err := cron.NewSnapshotJob(cron.SnapshotJobParams{
		Logger:    logg,
		Users:     users.NewRepository(dbClient.DB()),
		Snapshots: historyService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshot job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("snapshot-daily"), cfg.Snapshot.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshot lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(snapshotJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Hour:     cfg.Snapshot.Hour,
		Location: location,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshot worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"hour":        cfg.Snapshot.Hour,
		"timezone":    cfg.Snapshot.Timezone,
	})
	logg.Info(ctx, "starting snapshot worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "snapshot worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "snapshot worker shutting down gracefully")
}
