package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/otofix/storefront-backend/api/controllers"
	"github.com/otofix/storefront-backend/api/middleware"
	"github.com/otofix/storefront-backend/internal/catalog"
	"github.com/otofix/storefront-backend/internal/checkout"
	"github.com/otofix/storefront-backend/internal/customer"
	"github.com/otofix/storefront-backend/internal/erp"
	"github.com/otofix/storefront-backend/internal/tenant"
	"github.com/otofix/storefront-backend/pkg/auth/session"
	"github.com/otofix/storefront-backend/pkg/config"
	"github.com/otofix/storefront-backend/pkg/logger"
	"github.com/otofix/storefront-backend/pkg/metrics"
	redisclient "github.com/otofix/storefront-backend/pkg/redis"
	"github.com/otofix/storefront-backend/pkg/storage"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	Redis          *redisclient.Client
	ERP            *erp.Client
	Resolver       *tenant.Resolver
	Catalog        *catalog.Service
	Checkout       *checkout.Service
	Customer       *customer.Service
	SessionChecker session.AccessSessionChecker
	Visitor        storage.KV
	HTTPMetrics    *metrics.HTTPMetrics
}

// NewRouter assembles the full storefront HTTP surface. All tenant-scoped
// routes live under /api/v1/stores/{storeSlug} and pass through the visitor
// session and tenant resolution middleware.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.CORS())
	if deps.HTTPMetrics != nil {
		r.Use(middleware.Metrics(deps.HTTPMetrics))
	}

	r.Get("/healthz/live", controllers.HealthLive(cfg))
	r.Get("/healthz/ready", readinessHandler(cfg, deps, logg))
	r.Handle("/metrics", promhttp.Handler())

	refresher := deps.Checkout.Refresher()

	r.Route("/api/v1/stores/{storeSlug}", func(r chi.Router) {
		r.Use(middleware.VisitorSession(logg, cfg.App.IsProd()))
		r.Use(middleware.Tenant(deps.Resolver, logg))
		r.Use(middleware.RequireTenant(logg))

		r.Get("/config", controllers.StorefrontConfig(logg))

		r.Get("/products", controllers.ListProducts(deps.Catalog, logg))
		r.Get("/products/{productID}", controllers.GetProduct(deps.Catalog, logg))
		r.Get("/categories", controllers.ListCategories(deps.Catalog, logg))
		r.Get("/brands", controllers.ListBrands(deps.Catalog, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(deps.Visitor, logg))
			r.Delete("/", controllers.ClearCart(deps.Visitor, refresher, logg))
			r.Post("/items", controllers.AddCartItem(deps.Visitor, refresher, logg))
			r.Put("/items/{productID}", controllers.UpdateCartItem(deps.Visitor, refresher, logg))
			r.Delete("/items/{productID}", controllers.RemoveCartItem(deps.Visitor, refresher, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.GetWishlist(deps.Visitor, logg))
			r.Post("/items", controllers.AddWishlistItem(deps.Visitor, logg))
			r.Post("/toggle", controllers.ToggleWishlistItem(deps.Visitor, logg))
			r.Delete("/items/{productID}", controllers.RemoveWishlistItem(deps.Visitor, logg))
			r.Post("/items/{productID}/move-to-cart", controllers.MoveWishlistItemToCart(deps.Visitor, refresher, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, deps.SessionChecker, logg))
			r.Get("/quote", controllers.GetQuote(deps.Checkout, logg))
			r.Post("/promo-code", controllers.ApplyPromoCode(deps.Checkout, logg))
			r.Delete("/promo-code", controllers.RemovePromoCode(deps.Checkout, logg))
			r.Post("/orders", controllers.SubmitOrder(deps.Checkout, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			loginLimit := middleware.AuthRateLimit(
				middleware.NewAuthRateLimitPolicy("login", time.Minute, 20, 5),
				rateStore(deps.Redis), logg,
			)
			registerLimit := middleware.AuthRateLimit(
				middleware.NewAuthRateLimitPolicy("register", time.Minute, 10, 3),
				rateStore(deps.Redis), logg,
			)
			r.With(loginLimit).Post("/login", controllers.Login(deps.Customer, logg))
			r.With(registerLimit).Post("/register", controllers.Register(deps.Customer, logg))
			r.Post("/refresh", controllers.RefreshSession(deps.Customer, cfg.JWT, logg))
			r.Post("/logout", controllers.Logout(deps.Customer, cfg.JWT, logg))
		})

		r.Route("/account", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
			r.Get("/profile", controllers.GetProfile(deps.Customer, logg))
			r.Put("/profile", controllers.UpdateProfile(deps.Customer, logg))
			r.Get("/addresses", controllers.ListAddresses(deps.Customer, logg))
			r.Post("/addresses", controllers.CreateAddress(deps.Customer, logg))
			r.Delete("/addresses/{addressID}", controllers.DeleteAddress(deps.Customer, logg))
			r.Get("/vehicles", controllers.ListVehicles(deps.Customer, logg))
			r.Post("/vehicles", controllers.CreateVehicle(deps.Customer, logg))
			r.Delete("/vehicles/{vehicleID}", controllers.DeleteVehicle(deps.Customer, logg))
		})
	})

	return r
}

func readinessHandler(cfg *config.Config, deps Deps, logg *logger.Logger) http.HandlerFunc {
	var erpPing, redisPing controllers.Pinger
	if deps.ERP != nil {
		erpPing = deps.ERP
	}
	if deps.Redis != nil {
		redisPing = deps.Redis
	}
	return controllers.HealthReady(cfg, erpPing, redisPing, logg)
}

func rateStore(client *redisclient.Client) middleware.RateLimiterStore {
	if client == nil {
		return nil
	}
	return client
}
