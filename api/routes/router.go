package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jvales/shopstate/api/controllers"
	"github.com/jvales/shopstate/api/middleware"
	"github.com/jvales/shopstate/internal/activity"
	"github.com/jvales/shopstate/internal/auth"
	"github.com/jvales/shopstate/internal/cart"
	"github.com/jvales/shopstate/internal/catalog"
	"github.com/jvales/shopstate/internal/orders"
	"github.com/jvales/shopstate/internal/reviews"
	"github.com/jvales/shopstate/internal/wishlist"
	"github.com/jvales/shopstate/pkg/config"
	"github.com/jvales/shopstate/pkg/kv"
	"github.com/jvales/shopstate/pkg/logger"
	"github.com/jvales/shopstate/pkg/metrics"
	"github.com/jvales/shopstate/pkg/redis"
)

// Deps carries everything the router wires into controllers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics
	Store       kv.Pinger
	Cache       *redis.Client

	Catalog  catalog.Service
	Cart     cart.Service
	Wishlist wishlist.Service
	Orders   orders.Service
	Auth     auth.Service
	Reviews  reviews.Service
	Activity activity.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Store, deps.Cache))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog/products", func(r chi.Router) {
			r.Get("/", controllers.CatalogList(deps.Catalog, logg))
			r.Get("/{productId}", controllers.CatalogDetail(deps.Catalog, deps.Activity, logg))
			r.Get("/{productId}/reviews", controllers.ReviewsList(deps.Reviews, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.AuthRegister(deps.Auth, logg))
			r.Post("/login", controllers.AuthLogin(deps.Auth, deps.Activity, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
			r.Get("/session", controllers.AuthSession(deps.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Auth, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.Cart, logg))
				r.Post("/items", controllers.CartAdd(deps.Cart, deps.Catalog, logg))
				r.Patch("/items/{productId}", controllers.CartUpdate(deps.Cart, logg))
				r.Delete("/items/{productId}", controllers.CartRemove(deps.Cart, logg))
				r.Delete("/", controllers.CartClear(deps.Cart, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistFetch(deps.Wishlist, logg))
				r.Post("/items", controllers.WishlistAdd(deps.Wishlist, deps.Catalog, logg))
				r.Delete("/items/{productId}", controllers.WishlistRemove(deps.Wishlist, logg))
				r.Delete("/", controllers.WishlistClear(deps.Wishlist, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(deps.Orders, logg))
				r.Delete("/", controllers.OrdersClear(deps.Orders, logg))
			})
			r.Post("/checkout", controllers.Checkout(deps.Orders, deps.Cart, logg))

			r.Post("/catalog/products/{productId}/reviews", controllers.ReviewCreate(deps.Reviews, deps.Auth, logg))

			r.Route("/activity", func(r chi.Router) {
				r.Get("/recently-viewed", controllers.RecentlyViewed(deps.Activity, logg))
				r.Get("/compare", controllers.CompareFetch(deps.Activity, logg))
				r.Post("/compare", controllers.CompareToggle(deps.Activity, deps.Catalog, logg))
				r.Post("/redirect", controllers.RedirectSet(deps.Activity, logg))
			})
		})
	})

	return r
}
