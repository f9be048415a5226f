package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/catalog-admin-backend/api/controllers"
	"github.com/angelmondragon/catalog-admin-backend/api/routes"
	"github.com/angelmondragon/catalog-admin-backend/internal/blog"
	category "github.com/angelmondragon/catalog-admin-backend/internal/categories"
	"github.com/angelmondragon/catalog-admin-backend/internal/media"
	product "github.com/angelmondragon/catalog-admin-backend/internal/products"
	tag "github.com/angelmondragon/catalog-admin-backend/internal/tags"
	"github.com/angelmondragon/catalog-admin-backend/internal/views"
	"github.com/angelmondragon/catalog-admin-backend/pkg/bigquery"
	"github.com/angelmondragon/catalog-admin-backend/pkg/config"
	"github.com/angelmondragon/catalog-admin-backend/pkg/db"
	"github.com/angelmondragon/catalog-admin-backend/pkg/instance"
	"github.com/angelmondragon/catalog-admin-backend/pkg/logger"
	"github.com/angelmondragon/catalog-admin-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-admin-backend/pkg/migrate"
	"github.com/angelmondragon/catalog-admin-backend/pkg/outbox"
	"github.com/angelmondragon/catalog-admin-backend/pkg/redis"
	"github.com/angelmondragon/catalog-admin-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	requireResource(context.Background(), logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient)
	requireResource(context.Background(), logg, "dev migrations", err)

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(context.Background(), logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	requireResource(context.Background(), logg, "gcs", err)

	readiness := map[string]controllers.Pinger{
		"db":    dbClient,
		"redis": redisClient,
		"gcs":   gcsClient,
	}

	var viewSink *bigquery.Client
	if cfg.FeatureFlags.ViewsToBQ {
		viewSink, err = bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
		requireResource(context.Background(), logg, "bigquery", err)
		defer func() {
			if err := viewSink.Close(); err != nil {
				logg.Error(context.Background(), "error closing bigquery", err)
			}
		}()
		readiness["bigquery"] = viewSink
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	catalogMetrics := metrics.NewCatalogMetrics(registry)

	emitter := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg, "catalog-api", cfg.FeatureFlags.PublishEvents)

	tagService, err := tag.NewService(tag.NewRepository(dbClient.DB()), dbClient, logg)
	requireResource(context.Background(), logg, "tag service", err)

	categoryService, err := category.NewService(category.NewRepository(dbClient.DB()), dbClient, emitter, catalogMetrics, logg)
	requireResource(context.Background(), logg, "category service", err)

	mediaService, err := media.NewService(media.ServiceParams{
		Repo:    media.NewRepository(dbClient.DB()),
		Tx:      dbClient,
		Store:   gcsClient,
		Outbox:  emitter,
		Config:  cfg.Media,
		Prefix:  cfg.GCS.KeyPrefix,
		Metrics: catalogMetrics,
		Logger:  logg,
	})
	requireResource(context.Background(), logg, "media service", err)

	productService, err := product.NewService(product.ServiceParams{
		Repo:       product.NewRepository(dbClient.DB()),
		Tx:         dbClient,
		Categories: categoryService,
		Assets:     mediaService,
		Outbox:     emitter,
		Cache:      redisClient,
		CacheTTL:   cfg.Cache.ProductTTL,
		Reconcilers: []product.ReconcilerFunc{
			categoryService.ReconcileCounts,
			tagService.ReconcileCounts,
			mediaService.ReconcileUsage,
		},
		Metrics: catalogMetrics,
		Logger:  logg,
	})
	requireResource(context.Background(), logg, "product service", err)

	blogService, err := blog.NewService(blog.ServiceParams{
		Repo:        blog.NewRepository(dbClient.DB()),
		Tx:          dbClient,
		Outbox:      emitter,
		Reconcilers: []blog.ReconcilerFunc{tagService.ReconcileCounts},
		Metrics:     catalogMetrics,
		Logger:      logg,
	})
	requireResource(context.Background(), logg, "blog service", err)

	viewParams := views.ServiceParams{
		Repo:        views.NewRepository(dbClient.DB()),
		Tx:          dbClient,
		Dedup:       redisClient,
		DedupWindow: cfg.Cache.ViewDedup,
		Metrics:     catalogMetrics,
		Logger:      logg,
	}
	if viewSink != nil {
		viewParams.Sink = viewSink
	}
	viewService, err := views.NewService(viewParams)
	requireResource(context.Background(), logg, "view service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			catalogMetrics,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			readiness,
			redisClient,
			productService,
			categoryService,
			tagService,
			blogService,
			mediaService,
			viewService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "failed to initialize "+name, err)
	os.Exit(1)
}
