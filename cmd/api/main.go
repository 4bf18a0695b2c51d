package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/carbon-ledger/api/routes"
	"github.com/angelmondragon/carbon-ledger/internal/entities"
	"github.com/angelmondragon/carbon-ledger/internal/products"
	"github.com/angelmondragon/carbon-ledger/internal/purchases"
	"github.com/angelmondragon/carbon-ledger/pkg/config"
	"github.com/angelmondragon/carbon-ledger/pkg/db"
	"github.com/angelmondragon/carbon-ledger/pkg/logger"
	"github.com/angelmondragon/carbon-ledger/pkg/metrics"
	"github.com/angelmondragon/carbon-ledger/pkg/migrate"
	"github.com/angelmondragon/carbon-ledger/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	schema, err := db.LoadSchema(ctx, dbClient.DB())
	requireResource(ctx, logg, "database schema", err)
	logg.Info(logg.WithField(ctx, "tables", schema.Tables()), "schema.loaded")

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(ctx, "redis not configured, idempotent replay disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	conn := dbClient.DB()
	purchaseRepo := purchases.NewRepository(conn)

	entityService, err := entities.NewService(entities.NewRepository(conn), purchaseRepo, dbClient)
	requireResource(ctx, logg, "entity service", err)
	productService, err := products.NewService(products.NewRepository(conn), dbClient)
	requireResource(ctx, logg, "product service", err)
	purchaseService, err := purchases.NewService(purchaseRepo, dbClient)
	requireResource(ctx, logg, "purchase service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			schema,
			dbClient,
			redisClient,
			httpMetrics,
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			entityService,
			productService,
			purchaseService,
		),
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
