package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mahafpc/agrichain-backend/api/controllers"
	"github.com/mahafpc/agrichain-backend/api/middleware"
	"github.com/mahafpc/agrichain-backend/internal/activities"
	"github.com/mahafpc/agrichain-backend/internal/auth"
	"github.com/mahafpc/agrichain-backend/internal/cooperatives"
	"github.com/mahafpc/agrichain-backend/internal/dispatches"
	"github.com/mahafpc/agrichain-backend/internal/farmers"
	"github.com/mahafpc/agrichain-backend/internal/inventory"
	"github.com/mahafpc/agrichain-backend/internal/payments"
	"github.com/mahafpc/agrichain-backend/internal/procurements"
	"github.com/mahafpc/agrichain-backend/internal/products"
	"github.com/mahafpc/agrichain-backend/internal/retailers"
	"github.com/mahafpc/agrichain-backend/internal/sales"
	"github.com/mahafpc/agrichain-backend/internal/users"
	"github.com/mahafpc/agrichain-backend/pkg/auth/session"
	"github.com/mahafpc/agrichain-backend/pkg/config"
	"github.com/mahafpc/agrichain-backend/pkg/db"
	"github.com/mahafpc/agrichain-backend/pkg/logger"
	"github.com/mahafpc/agrichain-backend/pkg/redis"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Auth         auth.Service
	Users        users.Service
	Cooperatives cooperatives.Service
	Farmers      farmers.Service
	Products     products.Service
	Retailers    retailers.Service
	Procurements procurements.Service
	Inventory    inventory.Service
	Sales        sales.Service
	Dispatches   dispatches.Service
	Payments     payments.Service
	Activities   activities.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/cooperatives", func(r chi.Router) {
			r.Get("/", controllers.CooperativeList(svcs.Cooperatives, logg))
			r.Post("/", controllers.CooperativeCreate(svcs.Cooperatives, logg))
			r.Get("/{cooperativeId}", controllers.CooperativeDetail(svcs.Cooperatives, logg))
			r.Put("/{cooperativeId}", controllers.CooperativeUpdate(svcs.Cooperatives, logg))
		})

		r.Route("/farmers", func(r chi.Router) {
			r.Get("/", controllers.FarmerList(svcs.Farmers, logg))
			r.Post("/", controllers.FarmerCreate(svcs.Farmers, logg))
			r.Get("/{farmerId}", controllers.FarmerDetail(svcs.Farmers, logg))
			r.Put("/{farmerId}", controllers.FarmerUpdate(svcs.Farmers, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(svcs.Products, logg))
			r.Post("/", controllers.ProductCreate(svcs.Products, logg))
			r.Get("/{productId}", controllers.ProductDetail(svcs.Products, logg))
			r.Put("/{productId}", controllers.ProductUpdate(svcs.Products, logg))
		})

		r.Route("/retailers", func(r chi.Router) {
			r.Get("/", controllers.RetailerList(svcs.Retailers, logg))
			r.Post("/", controllers.RetailerCreate(svcs.Retailers, logg))
			r.Get("/{retailerId}", controllers.RetailerDetail(svcs.Retailers, logg))
			r.Put("/{retailerId}", controllers.RetailerUpdate(svcs.Retailers, logg))
		})

		r.Route("/procurements", func(r chi.Router) {
			r.Get("/", controllers.ProcurementList(svcs.Procurements, logg))
			r.Post("/", controllers.ProcurementCreate(svcs.Procurements, logg))
			r.Get("/{procurementId}", controllers.ProcurementDetail(svcs.Procurements, logg))
			r.Put("/{procurementId}", controllers.ProcurementUpdate(svcs.Procurements, logg))
			r.Delete("/{procurementId}", controllers.ProcurementDelete(svcs.Procurements, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(svcs.Inventory, logg))
			r.Put("/", controllers.InventorySet(svcs.Inventory, logg))
			r.Get("/{cooperativeId}/{productId}", controllers.InventoryGet(svcs.Inventory, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.SaleList(svcs.Sales, logg))
			r.Post("/", controllers.SaleCreate(svcs.Sales, logg))
			r.Get("/{saleId}", controllers.SaleDetail(svcs.Sales, logg))
			r.Put("/{saleId}", controllers.SaleUpdate(svcs.Sales, logg))
			r.Post("/{saleId}/status", controllers.SaleTransition(svcs.Sales, logg))
		})

		r.Route("/dispatches", func(r chi.Router) {
			r.Get("/", controllers.DispatchList(svcs.Dispatches, logg))
			r.Post("/", controllers.DispatchCreate(svcs.Dispatches, logg))
			r.Get("/{dispatchId}", controllers.DispatchDetail(svcs.Dispatches, logg))
			r.Put("/{dispatchId}", controllers.DispatchUpdate(svcs.Dispatches, logg))
			r.Post("/{dispatchId}/status", controllers.DispatchTransition(svcs.Dispatches, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", controllers.PaymentList(svcs.Payments, logg))
			r.Post("/", controllers.PaymentCreate(svcs.Payments, logg))
		})

		r.Get("/activities", controllers.ActivityList(svcs.Activities, logg))

		r.Route("/users", func(r chi.Router) {
			// detail stays open so users can read their own profile;
			// the service enforces self-or-admin.
			r.Get("/{userId}", controllers.UserDetail(svcs.Users, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin", logg))
				r.Get("/", controllers.UserList(svcs.Users, logg))
				r.Post("/", controllers.UserCreate(svcs.Users, logg))
				r.Put("/{userId}", controllers.UserUpdate(svcs.Users, logg))
			})
		})
	})

	return r
}
