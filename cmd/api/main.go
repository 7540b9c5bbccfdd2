package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/mywealth/wealth-backend/api/routes"
	"github.com/mywealth/wealth-backend/internal/assets"
	"github.com/mywealth/wealth-backend/internal/market"
	"github.com/mywealth/wealth-backend/internal/transactions"
	"github.com/mywealth/wealth-backend/internal/users"
	"github.com/mywealth/wealth-backend/pkg/cache"
	"github.com/mywealth/wealth-backend/pkg/config"
	"github.com/mywealth/wealth-backend/pkg/db"
	"github.com/mywealth/wealth-backend/pkg/logger"
	"github.com/mywealth/wealth-backend/pkg/metrics"
	"github.com/mywealth/wealth-backend/pkg/migrate"
	"github.com/mywealth/wealth-backend/pkg/redis"
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

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "redis not configured; idempotency and market rate limiting disabled")
	}
	defer func() {
		err := dbClient.Close()
		if redisClient != nil {
			err = multierr.Append(err, redisClient.Close())
		}
		if err != nil {
			logg.Error(context.Background(), "error releasing connections", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	userService, err := users.NewService(users.NewRepository(dbClient.DB()), dbClient, cfg.Roles, logg)
	mustService(ctx, logg, "users", err)

	assetRepo := assets.NewRepository(dbClient.DB())
	assetService, err := assets.NewService(assetRepo, dbClient, logg)
	mustService(ctx, logg, "assets", err)

	transactionService, err := transactions.NewService(
		transactions.NewRepository(dbClient.DB()),
		assetRepo,
		dbClient,
		logg,
		metrics.NewLedgerMetrics(registry),
	)
	mustService(ctx, logg, "transactions", err)

	priceCache, rateCache := marketCaches(ctx, cfg.Market, redisClient, logg)
	marketService, err := market.NewService(market.NewYahoo(), priceCache, rateCache, metrics.NewMarketMetrics(registry), logg)
	mustService(ctx, logg, "market", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"db_driver": cfg.DB.Driver,
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			userService,
			assetService,
			transactionService,
			marketService,
		),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(serverCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(serverCtx, "api server stopped")
}

// marketCaches picks the configured backend. Redis falls back to memory when unavailable.
func marketCaches(ctx context.Context, cfg config.MarketConfig, client *redis.Client, logg *logger.Logger) (cache.Store, cache.Store) {
	if strings.EqualFold(cfg.CacheBackend, config.CacheBackendRedis) {
		if client != nil {
			return cache.NewRedis(client, "market:price", cfg.PriceTTL), cache.NewRedis(client, "market:rate", cfg.RateTTL)
		}
		logg.Warn(ctx, "redis cache backend requested without redis; using memory caches")
	}
	return cache.NewMemory(cfg.CacheCapacity, cfg.PriceTTL), cache.NewMemory(cfg.CacheCapacity, cfg.RateTTL)
}

func mustService(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "service", name), "failed to create service", err)
	os.Exit(1)
}
