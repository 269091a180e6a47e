// Package routes assembles the HTTP surface: middleware chain, health and
// metrics endpoints, and the versioned API.
package routes

import (
	"net/http"

	"github.com/avaldez-dev/storefront-core/api/controllers"
	"github.com/avaldez-dev/storefront-core/api/middleware"
	"github.com/avaldez-dev/storefront-core/internal/cart"
	"github.com/avaldez-dev/storefront-core/internal/checkout"
	"github.com/avaldez-dev/storefront-core/internal/identity"
	"github.com/avaldez-dev/storefront-core/internal/orders"
	"github.com/avaldez-dev/storefront-core/internal/products"
	"github.com/avaldez-dev/storefront-core/pkg/auth/session"
	"github.com/avaldez-dev/storefront-core/pkg/config"
	dbpkg "github.com/avaldez-dev/storefront-core/pkg/db"
	"github.com/avaldez-dev/storefront-core/pkg/logger"
	"github.com/avaldez-dev/storefront-core/pkg/metrics"
	redisclient "github.com/avaldez-dev/storefront-core/pkg/redis"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps carries everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       dbpkg.Pinger
	Redis    redisclient.Pinger
	Sessions session.AccessSessionChecker
	Registry *prometheus.Registry
	Metrics  *metrics.HTTPMetrics

	Identity identity.Service
	Products products.Service
	Cart     cart.Service
	Checkout checkout.Service
	Orders   orders.Service
}

// New builds the router. Cart routes run behind OptionalAuth so the same
// endpoints serve anonymous and signed-in shoppers; checkout and orders
// require a live session.
func New(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.CORS())
	r.Use(middleware.CartSession(logg, cfg.LocalCart.SnapshotTTL, !cfg.App.IsDev()))
	r.Use(middleware.Metrics(deps.Metrics))

	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	requireAuth := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.AuthRegister(deps.Identity, logg))
			r.Post("/login", controllers.AuthLogin(deps.Identity, logg))
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", controllers.AuthLogout(deps.Identity, logg))
				r.Get("/me", controllers.AuthMe(deps.Identity, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(deps.Products, logg))
			r.Get("/{productId}", controllers.ProductsGet(deps.Products, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", controllers.CartView(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Patch("/items/{productId}", controllers.CartSetQuantity(deps.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.Cart, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))
			r.Get("/orders", controllers.OrdersList(deps.Orders, logg))
			r.Get("/orders/{orderId}", controllers.OrdersGet(deps.Orders, logg))
		})
	})

	return r
}
