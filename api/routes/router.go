package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kitline/kitline-backend/api/controllers"
	"github.com/kitline/kitline-backend/api/middleware"
	"github.com/kitline/kitline-backend/internal/catalog"
	"github.com/kitline/kitline-backend/internal/composer"
	"github.com/kitline/kitline-backend/internal/drafts"
	"github.com/kitline/kitline-backend/internal/orders"
	"github.com/kitline/kitline-backend/pkg/config"
	"github.com/kitline/kitline-backend/pkg/db"
	"github.com/kitline/kitline-backend/pkg/logger"
	"github.com/kitline/kitline-backend/pkg/metrics"
	"github.com/kitline/kitline-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Cfg         *config.Config
	Logg        *logger.Logger
	DBPinger    db.Pinger
	RedisClient *redis.Client
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics

	CatalogService catalog.Service
	Composer       *composer.Manager
	DraftStore     *drafts.Store
	OrdersService  orders.Service
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(deps.Logg),
		middleware.RequestID(deps.Logg),
		middleware.Logging(deps.Logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	// A typed-nil *redis.Client would slip past the middlewares' nil
	// checks once boxed in an interface, so resolve it here.
	var redisPinger redis.Pinger
	var idemStore redis.IdempotencyStore
	if deps.RedisClient != nil {
		redisPinger = deps.RedisClient
		idemStore = deps.RedisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Cfg))
		r.Get("/ready", controllers.HealthReady(deps.Cfg, deps.Logg, deps.DBPinger, redisPinger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if deps.RedisClient != nil {
			r.Use(middleware.RateLimit(deps.Cfg.RateLimit, deps.RedisClient, deps.Logg))
		}

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.CatalogList(deps.CatalogService, deps.Logg))
			r.Get("/{productID}", controllers.CatalogDetail(deps.CatalogService, deps.Logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.ClubContext(deps.Logg))
			r.Use(middleware.Idempotency(idemStore, deps.Logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.Composer, deps.Logg))
				r.Put("/selections/{productID}", controllers.CartBufferSelection(deps.Composer, deps.Logg))
				r.Post("/items", controllers.CartAddItem(deps.CatalogService, deps.Composer, deps.Logg))
				r.Patch("/items/{itemID}", controllers.CartUpdateItem(deps.Composer, deps.Logg))
				r.Delete("/items/{itemID}", controllers.CartRemoveItem(deps.Composer, deps.Logg))
				r.Post("/allocations", controllers.CartAllocate(deps.CatalogService, deps.Composer, deps.Logg))
				r.Post("/draft", controllers.CartDraftSave(deps.Composer, deps.DraftStore, deps.Logg))
				r.Post("/draft/claim", controllers.CartDraftClaim(deps.Composer, deps.DraftStore, deps.Logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.OrdersSubmit(deps.Composer, deps.Logg))
				r.Get("/", controllers.OrdersList(deps.OrdersService, deps.Logg))
				r.Get("/{orderID}", controllers.OrdersDetail(deps.OrdersService, deps.Logg))
			})
		})
	})

	return r
}
