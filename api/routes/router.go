package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/halmarket/halmarket-backend/api/controllers"
	"github.com/halmarket/halmarket-backend/api/middleware"
	"github.com/halmarket/halmarket-backend/internal/batch"
	"github.com/halmarket/halmarket-backend/internal/comparison"
	"github.com/halmarket/halmarket-backend/internal/offers"
	"github.com/halmarket/halmarket-backend/internal/pricing"
	"github.com/halmarket/halmarket-backend/internal/repeatorder"
	"github.com/halmarket/halmarket-backend/pkg/config"
	"github.com/halmarket/halmarket-backend/pkg/db"
	"github.com/halmarket/halmarket-backend/pkg/logger"
	"github.com/halmarket/halmarket-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	pricingService pricing.Service,
	offersService offers.Service,
	comparisonEngine comparison.Engine,
	batchResolver batch.Resolver,
	repeatOrderValidator repeatorder.Validator,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Get("/healthz", controllers.HealthReady(cfg, logg, dbP, redisP))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/prices", func(r chi.Router) {
			r.Post("/calculate", controllers.CalculatePrice(pricingService, logg))
			r.Post("/batch", controllers.BatchResolve(batchResolver, logg))
		})

		r.Route("/products/{productId}", func(r chi.Router) {
			r.Get("/offers", controllers.ListSupplierOffers(offersService, logg))
			r.Get("/cheapest-offer", controllers.CheapestOffer(batchResolver, logg))
			r.Get("/price-stats", controllers.PriceStats(comparisonEngine, logg))
		})

		r.Get("/catalog", controllers.BrowseCatalog(offersService, logg))
		r.Get("/comparison", controllers.CompareOffers(comparisonEngine, logg))

		r.Post("/repeat-orders/validate", controllers.ValidateRepeatOrder(repeatOrderValidator, logg))
	})

	return r
}
