package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matjara-app/matjara-backend/api/controllers"
	webhookcontrollers "github.com/matjara-app/matjara-backend/api/controllers/webhooks"
	"github.com/matjara-app/matjara-backend/api/middleware"
	"github.com/matjara-app/matjara-backend/internal/auth"
	"github.com/matjara-app/matjara-backend/internal/categories"
	"github.com/matjara-app/matjara-backend/internal/delivery"
	"github.com/matjara-app/matjara-backend/internal/identity"
	"github.com/matjara-app/matjara-backend/internal/orders"
	"github.com/matjara-app/matjara-backend/internal/payments"
	"github.com/matjara-app/matjara-backend/internal/products"
	"github.com/matjara-app/matjara-backend/internal/stores"
	"github.com/matjara-app/matjara-backend/internal/wholesale"
	"github.com/matjara-app/matjara-backend/pkg/auth/session"
	"github.com/matjara-app/matjara-backend/pkg/config"
	"github.com/matjara-app/matjara-backend/pkg/db"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	"github.com/matjara-app/matjara-backend/pkg/logger"
	"github.com/matjara-app/matjara-backend/pkg/metrics"
	"github.com/matjara-app/matjara-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Registry *prometheus.Registry
	Metrics  *metrics.HTTPMetrics
	Sessions session.AccessSessionChecker

	AuthService      auth.Service
	IdentityService  identity.Service
	StoreService     stores.Service
	CategoryService  categories.Service
	ProductService   products.Service
	DeliveryService  delivery.Service
	WholesaleService wholesale.Service
	OrderService     orders.Service
	PaymentService   payments.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	// Redis is optional; a typed-nil conversion here would defeat the nil
	// checks in the consumers.
	var limitStore middleware.RateLimiterStore
	var redisPinger redis.Pinger
	if p.Redis != nil {
		limitStore = p.Redis
		redisPinger = p.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.Metrics),
	)

	loginPolicy := middleware.NewRateLimitPolicy("login", time.Minute, 10)
	registerPolicy := middleware.NewRateLimitPolicy("register", time.Minute, 5)
	otpPolicy := middleware.NewRateLimitPolicy("otp", time.Minute, 5)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, redisPinger))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/lahza", webhookcontrollers.LahzaWebhook(p.PaymentService, logg))
	})

	if !cfg.App.IsProd() {
		r.Post("/api/v1/stores", controllers.StoreCreate(p.StoreService, logg))
	}

	r.Route("/api/v1/stores/{storeSlug}", func(r chi.Router) {
		r.Use(middleware.StoreResolver(p.StoreService, logg))

		r.Get("/", controllers.StorefrontProfile())
		r.Get("/categories", controllers.StorefrontCategories(p.CategoryService, logg))
		r.Get("/products", controllers.StorefrontProducts(p.ProductService, logg))
		r.Get("/products/{productSlug}", controllers.StorefrontProductBySlug(p.ProductService, logg))
		r.Get("/delivery-methods", controllers.StorefrontDeliveryMethods(p.DeliveryService, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(registerPolicy, limitStore, logg)).
				Post("/register", controllers.AuthRegister(p.AuthService, logg))
			r.With(middleware.RateLimit(loginPolicy, limitStore, logg)).
				Post("/login", controllers.AuthLogin(p.AuthService, logg))
			r.With(middleware.RateLimit(otpPolicy, limitStore, logg)).
				Post("/verify-email", controllers.AuthVerifyEmail(p.AuthService, logg))
			r.With(middleware.RateLimit(otpPolicy, limitStore, logg)).
				Post("/resend-code", controllers.AuthResendCode(p.AuthService, logg))
			r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))

			if !cfg.App.IsProd() {
				r.Post("/admin/register", controllers.AdminAuthRegister(p.AuthService, logg))
			}
			r.With(middleware.RateLimit(loginPolicy, limitStore, logg)).
				Post("/admin/login", controllers.AdminAuthLogin(p.AuthService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
				r.Post("/logout", controllers.AuthLogout(p.AuthService, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
			r.Use(middleware.StoreScope(logg))
			r.Use(middleware.RequireRole(string(enums.IdentityRoleCustomer), logg))

			r.Get("/me", controllers.CustomerProfile(p.IdentityService, logg))
			r.Get("/me/wholesale", controllers.CustomerWholesaleStatus(p.WholesaleService, logg))
			r.Post("/checkout/quote", controllers.CheckoutQuote(p.OrderService, logg))
			r.Post("/checkout", controllers.CheckoutPlace(p.OrderService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.CustomerOrders(p.OrderService, logg))
				r.Get("/{orderId}", controllers.CustomerOrderDetail(p.OrderService, logg))
				r.Post("/{orderId}/payments", controllers.PaymentInitiate(p.PaymentService, p.IdentityService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.RequireRole(string(enums.IdentityRoleAdmin), logg))

		r.Get("/store", controllers.StoreProfile(p.StoreService, logg))
		r.Put("/store", controllers.StoreUpdate(p.StoreService, logg))

		r.Get("/customers", controllers.AdminCustomers(p.IdentityService, logg))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(p.CategoryService, logg))
			r.Post("/", controllers.CategoryCreate(p.CategoryService, logg))
			r.Patch("/{categoryId}", controllers.CategoryRename(p.CategoryService, logg))
			r.Delete("/{categoryId}", controllers.CategoryDelete(p.CategoryService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(p.ProductService, logg))
			r.Post("/", controllers.ProductCreate(p.ProductService, logg))
			r.Get("/{productId}", controllers.ProductDetail(p.ProductService, logg))
			r.Patch("/{productId}", controllers.ProductUpdate(p.ProductService, logg))
			r.Delete("/{productId}", controllers.ProductDeactivate(p.ProductService, logg))
		})

		r.Route("/delivery-methods", func(r chi.Router) {
			r.Get("/", controllers.DeliveryMethodList(p.DeliveryService, logg))
			r.Post("/", controllers.DeliveryMethodCreate(p.DeliveryService, logg))
			r.Patch("/{methodId}", controllers.DeliveryMethodUpdate(p.DeliveryService, logg))
		})

		r.Route("/agreements", func(r chi.Router) {
			r.Get("/", controllers.AgreementList(p.WholesaleService, logg))
			r.Post("/", controllers.AgreementGrant(p.WholesaleService, logg))
			r.Post("/{agreementId}/revoke", controllers.AgreementRevoke(p.WholesaleService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrders(p.OrderService, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(p.OrderService, logg))
			r.Post("/{orderId}/status", controllers.AdminOrderSetStatus(p.OrderService, logg))
			r.Get("/{orderId}/payments", controllers.AdminOrderPayments(p.PaymentService, p.OrderService, logg))
		})
	})

	return r
}
