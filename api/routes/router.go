package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mywealth/wealth-backend/api/controllers"
	"github.com/mywealth/wealth-backend/api/middleware"
	"github.com/mywealth/wealth-backend/internal/assets"
	"github.com/mywealth/wealth-backend/internal/market"
	"github.com/mywealth/wealth-backend/internal/transactions"
	"github.com/mywealth/wealth-backend/internal/users"
	"github.com/mywealth/wealth-backend/pkg/config"
	"github.com/mywealth/wealth-backend/pkg/logger"
	"github.com/mywealth/wealth-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	userService users.Service,
	assetService assets.Service,
	transactionService transactions.Service,
	marketService market.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	deps := map[string]controllers.Pinger{"db": dbP}
	var (
		idempotencyStore redis.IdempotencyStore
		limiter          redis.RateLimiter
	)
	if redisClient != nil {
		deps["redis"] = redisClient
		idempotencyStore = redisClient
		limiter = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps, logg))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	idempotent := middleware.Idempotency(idempotencyStore, logg)
	marketPolicy := middleware.NewRateLimitPolicy("market", cfg.Market.RateLimitWindow, cfg.Market.RateLimit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, userService, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", controllers.UserMe(userService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Get("/", controllers.UserList(userService, logg))
				r.Patch("/{uid}/role", controllers.UserUpdateRole(userService, logg))
			})
			r.With(middleware.RequireOwner(logg)).Delete("/{uid}", controllers.UserDelete(userService, logg))
		})

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", controllers.AssetList(assetService, logg))
			r.With(idempotent).Post("/", controllers.AssetCreate(assetService, logg))
			r.Get("/{assetId}", controllers.AssetGet(assetService, logg))
			r.Patch("/{assetId}", controllers.AssetUpdate(assetService, logg))
			r.Delete("/{assetId}", controllers.AssetDelete(assetService, logg))
			r.Get("/{assetId}/transactions", controllers.AssetTransactions(transactionService, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.With(idempotent).Post("/", controllers.TransactionCreate(transactionService, logg))
			r.Delete("/{transactionId}", controllers.TransactionDelete(transactionService, logg))
		})

		r.Route("/market", func(r chi.Router) {
			r.Use(middleware.UserRateLimit(marketPolicy, limiter, logg))
			r.Get("/stock/{ticker}", controllers.MarketStock(marketService, logg))
			r.Get("/rate", controllers.MarketRate(marketService, logg))
		})
	})

	return r
}
