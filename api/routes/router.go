package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/carbon-ledger/api/controllers"
	"github.com/angelmondragon/carbon-ledger/api/middleware"
	"github.com/angelmondragon/carbon-ledger/internal/entities"
	"github.com/angelmondragon/carbon-ledger/internal/products"
	"github.com/angelmondragon/carbon-ledger/internal/purchases"
	"github.com/angelmondragon/carbon-ledger/pkg/config"
	"github.com/angelmondragon/carbon-ledger/pkg/db"
	"github.com/angelmondragon/carbon-ledger/pkg/logger"
	"github.com/angelmondragon/carbon-ledger/pkg/metrics"
	"github.com/angelmondragon/carbon-ledger/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	schema *db.Schema,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	entityService entities.Service,
	productService products.Service,
	purchaseService purchases.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	var idempotencyStore redis.IdempotencyStore
	checks := []controllers.ReadinessCheck{{Name: "database", Ping: dbP.Ping}}
	if redisClient != nil {
		idempotencyStore = redisClient
		checks = append(checks, controllers.ReadinessCheck{Name: "redis", Ping: redisClient.Ping})
	}

	r.Get("/ping", controllers.Ping())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, schema, logg, checks...))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/entity", func(r chi.Router) {
		r.Get("/get/{id}", controllers.EntityGet(entityService, logg))
		r.Post("/update", controllers.EntityUpdate(entityService, logg))
		r.Get("/purchases/get/{id}", controllers.EntityPurchases(entityService, logg))
	})

	r.Route("/product", func(r chi.Router) {
		r.Get("/get/{comp_id}/{prod_id}", controllers.ProductGet(productService, logg))
		r.Get("/get/{prod_id}", controllers.ProductGetBase(productService, logg))
		r.Post("/add", controllers.ProductAdd(productService, logg))
		r.Post("/update", controllers.ProductUpdate(productService, logg))
	})

	r.Route("/purchase", func(r chi.Router) {
		r.Get("/get/{prch_id}", controllers.PurchaseGet(purchaseService, logg))
		r.With(middleware.Idempotency(idempotencyStore, logg)).Post("/add", controllers.PurchaseAdd(purchaseService, logg))
		r.Post("/update", controllers.PurchaseUpdate(purchaseService, logg))
	})

	return r
}
