package main

import (
	"cmp"
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	category "github.com/angelmondragon/catalog-admin-backend/internal/categories"
	"github.com/angelmondragon/catalog-admin-backend/internal/cron"
	"github.com/angelmondragon/catalog-admin-backend/internal/media"
	tag "github.com/angelmondragon/catalog-admin-backend/internal/tags"
	"github.com/angelmondragon/catalog-admin-backend/internal/views"
	"github.com/angelmondragon/catalog-admin-backend/pkg/config"
	"github.com/angelmondragon/catalog-admin-backend/pkg/db"
	"github.com/angelmondragon/catalog-admin-backend/pkg/instance"
	"github.com/angelmondragon/catalog-admin-backend/pkg/logger"
	"github.com/angelmondragon/catalog-admin-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-admin-backend/pkg/migrate"
	"github.com/angelmondragon/catalog-admin-backend/pkg/outbox"
	"github.com/angelmondragon/catalog-admin-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
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

	catalogMetrics := metrics.NewCatalogMetrics(prometheus.DefaultRegisterer)
	emitter := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg, "catalog-cron", cfg.FeatureFlags.PublishEvents)

	categoryService, err := category.NewService(category.NewRepository(dbClient.DB()), dbClient, emitter, catalogMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}
	tagService, err := tag.NewService(tag.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create tag service", err)
		os.Exit(1)
	}
	mediaRepo := media.NewRepository(dbClient.DB())
	viewService, err := views.NewService(views.ServiceParams{
		Repo:    views.NewRepository(dbClient.DB()),
		Tx:      dbClient,
		Metrics: catalogMetrics,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create view service", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry()
	jobs := []func() (cron.Job, error){
		func() (cron.Job, error) {
			return cron.NewCounterReconcileJob(cron.CounterReconcileJobParams{
				Logger: logg,
				Reconcilers: []cron.Reconciler{
					{Name: "categories", Run: categoryService.ReconcileCounts},
					{Name: "tags", Run: tagService.ReconcileCounts},
					{Name: "media", Run: func(ctx context.Context) error {
						_, err := mediaRepo.ReconcileUsage(ctx)
						return err
					}},
				},
			})
		},
		func() (cron.Job, error) {
			return cron.NewTrendingJob(cron.TrendingJobParams{Logger: logg, Views: viewService})
		},
		func() (cron.Job, error) {
			return cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
				Logger:     logg,
				Repository: outbox.NewRepository(dbClient.DB()),
				Views:      viewService,
				Retention:  cfg.Cron.OutboxRetentionDays,
				ViewsDays:  cfg.Cron.ViewsRetentionDays,
			})
		},
	}
	for _, build := range jobs {
		job, err := build()
		if err != nil {
			logg.Error(context.Background(), "failed to create cron job", err)
			os.Exit(1)
		}
		registry.Register(job)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker", cmp.Or(cfg.App.Env, "local")), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
		"jobs":     registry.Names(),
		"interval": cfg.Cron.Interval.String(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
