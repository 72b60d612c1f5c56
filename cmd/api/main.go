package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/matjara-app/matjara-backend/api/routes"
	"github.com/matjara-app/matjara-backend/internal/auth"
	"github.com/matjara-app/matjara-backend/internal/categories"
	"github.com/matjara-app/matjara-backend/internal/delivery"
	"github.com/matjara-app/matjara-backend/internal/identity"
	"github.com/matjara-app/matjara-backend/internal/orders"
	"github.com/matjara-app/matjara-backend/internal/otp"
	"github.com/matjara-app/matjara-backend/internal/payments"
	"github.com/matjara-app/matjara-backend/internal/products"
	"github.com/matjara-app/matjara-backend/internal/stores"
	"github.com/matjara-app/matjara-backend/internal/wholesale"
	"github.com/matjara-app/matjara-backend/pkg/auth/session"
	"github.com/matjara-app/matjara-backend/pkg/config"
	"github.com/matjara-app/matjara-backend/pkg/db"
	"github.com/matjara-app/matjara-backend/pkg/lahza"
	"github.com/matjara-app/matjara-backend/pkg/logger"
	"github.com/matjara-app/matjara-backend/pkg/metrics"
	"github.com/matjara-app/matjara-backend/pkg/migrate"
	"github.com/matjara-app/matjara-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	lahzaClient, err := lahza.NewClient(context.Background(), cfg.Lahza, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create lahza client", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()

	identityService, err := identity.NewService(identity.NewRepository(gormDB))
	exitOnError(logg, "identity service", err)

	otpService, err := otp.NewService(redisClient, cfg.OTP)
	exitOnError(logg, "otp service", err)

	authService, err := auth.NewService(auth.ServiceParams{
		IdentityService: identityService,
		OTPService:      otpService,
		SessionManager:  sessionManager,
		JWTConfig:       cfg.JWT,
		PasswordConfig:  cfg.Password,
		Logger:          logg,
	})
	exitOnError(logg, "auth service", err)

	storeService, err := stores.NewService(stores.NewRepository(gormDB))
	exitOnError(logg, "store service", err)

	categoryService, err := categories.NewService(categories.NewRepository(gormDB))
	exitOnError(logg, "category service", err)

	productService, err := products.NewService(products.NewRepository(gormDB))
	exitOnError(logg, "product service", err)

	deliveryService, err := delivery.NewService(delivery.NewRepository(gormDB))
	exitOnError(logg, "delivery service", err)

	wholesaleService, err := wholesale.NewService(wholesale.NewRepository(gormDB))
	exitOnError(logg, "wholesale service", err)

	orderService, err := orders.NewService(orders.ServiceParams{
		OrderRepo:       orders.NewRepository(gormDB),
		ProductCatalog:  products.NewRepository(gormDB),
		WholesaleSvc:    wholesaleService,
		StoreService:    storeService,
		DeliveryService: deliveryService,
		TxRunner:        dbClient,
	})
	exitOnError(logg, "order service", err)

	paymentService, err := payments.NewService(payments.ServiceParams{
		PaymentRepo:  payments.NewRepository(gormDB),
		OrderService: orderService,
		Gateway:      lahzaClient,
		Logger:       logg,
	})
	exitOnError(logg, "payment service", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	handler := routes.NewRouter(routes.RouterParams{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Registry: registry,
		Metrics:  httpMetrics,
		Sessions: sessionManager,

		AuthService:      authService,
		IdentityService:  identityService,
		StoreService:     storeService,
		CategoryService:  categoryService,
		ProductService:   productService,
		DeliveryService:  deliveryService,
		WholesaleService: wholesaleService,
		OrderService:     orderService,
		PaymentService:   paymentService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func exitOnError(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+resource, err)
	os.Exit(1)
}
