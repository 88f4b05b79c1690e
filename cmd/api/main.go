package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/halmarket/halmarket-backend/api/routes"
	"github.com/halmarket/halmarket-backend/internal/batch"
	"github.com/halmarket/halmarket-backend/internal/comparison"
	"github.com/halmarket/halmarket-backend/internal/offers"
	"github.com/halmarket/halmarket-backend/internal/pricing"
	"github.com/halmarket/halmarket-backend/internal/repeatorder"
	"github.com/halmarket/halmarket-backend/pkg/config"
	"github.com/halmarket/halmarket-backend/pkg/db"
	"github.com/halmarket/halmarket-backend/pkg/logger"
	"github.com/halmarket/halmarket-backend/pkg/metrics"
	"github.com/halmarket/halmarket-backend/pkg/migrate"
	"github.com/halmarket/halmarket-backend/pkg/redis"
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

	policy, err := pricing.NewPolicy(cfg.Commission)
	if err != nil {
		logg.Error(context.Background(), "failed to build commission policy", err)
		os.Exit(1)
	}

	pricingMetrics := metrics.NewPricingMetrics(prometheus.DefaultRegisterer)

	offersRepo := offers.NewRepository(dbClient.DB())

	pricingService, err := pricing.NewService(offersRepo, policy, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	offersService, err := offers.NewService(offersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create offers service", err)
		os.Exit(1)
	}

	comparisonEngine, err := comparison.NewEngine(offersRepo, policy, redisClient, pricingMetrics, logg, cfg.Pricing.StatsCacheTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create comparison engine", err)
		os.Exit(1)
	}

	batchResolver, err := batch.NewResolver(offersRepo, policy, pricingMetrics, logg,
		cfg.Pricing.BatchConcurrency, cfg.Pricing.OfferStoreTimeout)
	if err != nil {
		logg.Error(context.Background(), "failed to create batch resolver", err)
		os.Exit(1)
	}

	repeatOrderValidator, err := repeatorder.NewValidator(
		repeatorder.NewRepository(dbClient.DB()), offersRepo, policy, logg, cfg.Pricing.SignificantChangePct)
	if err != nil {
		logg.Error(context.Background(), "failed to create repeat order validator", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient,
			pricingService, offersService, comparisonEngine, batchResolver, repeatOrderValidator),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
