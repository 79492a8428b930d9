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
	"go.uber.org/multierr"

	"github.com/mahafpc/agrichain-backend/api/routes"
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
	"github.com/mahafpc/agrichain-backend/internal/sequence"
	"github.com/mahafpc/agrichain-backend/internal/users"
	"github.com/mahafpc/agrichain-backend/pkg/auth/session"
	"github.com/mahafpc/agrichain-backend/pkg/config"
	"github.com/mahafpc/agrichain-backend/pkg/db"
	"github.com/mahafpc/agrichain-backend/pkg/logger"
	"github.com/mahafpc/agrichain-backend/pkg/metrics"
	"github.com/mahafpc/agrichain-backend/pkg/migrate"
	"github.com/mahafpc/agrichain-backend/pkg/redis"
)

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	registry := prometheus.NewRegistry()
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	svcs, err := buildServices(cfg, dbClient, sessionManager, ledgerMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

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
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, registry, svcs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithFields(ctx, map[string]any{"signal": sig.String()}), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := multierr.Append(server.Shutdown(shutdownCtx), <-errCh)
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "shutdown finished with errors", err)
			os.Exit(1)
		}
	}
}

func buildServices(
	cfg *config.Config,
	dbClient *db.Client,
	sessionManager *session.Manager,
	ledgerMetrics *metrics.LedgerMetrics,
	logg *logger.Logger,
) (routes.Services, error) {
	gdb := dbClient.DB()

	userRepo := users.NewRepository(gdb)

	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return routes.Services{}, err
	}

	userSvc, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		return routes.Services{}, err
	}

	coopSvc, err := cooperatives.NewService(cooperatives.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}

	farmerRepo := farmers.NewRepository(gdb)
	farmerSvc, err := farmers.NewService(farmerRepo)
	if err != nil {
		return routes.Services{}, err
	}

	productRepo := products.NewRepository(gdb)
	productSvc, err := products.NewService(productRepo)
	if err != nil {
		return routes.Services{}, err
	}

	retailerRepo := retailers.NewRepository(gdb)
	retailerSvc, err := retailers.NewService(retailerRepo)
	if err != nil {
		return routes.Services{}, err
	}

	activitySvc, err := activities.NewService(activities.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}

	inventorySvc, err := inventory.NewService(inventory.NewRepository(gdb), productRepo, ledgerMetrics, logg)
	if err != nil {
		return routes.Services{}, err
	}

	sequenceSvc, err := sequence.NewService(sequence.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}

	procurementSvc, err := procurements.NewService(
		procurements.NewRepository(gdb),
		dbClient,
		sequenceSvc,
		inventorySvc,
		farmerRepo,
		productRepo,
		activitySvc,
	)
	if err != nil {
		return routes.Services{}, err
	}

	saleSvc, err := sales.NewService(
		sales.NewRepository(gdb),
		dbClient,
		sequenceSvc,
		inventorySvc,
		productRepo,
		cooperatives.NewRepository(gdb),
		activitySvc,
		sales.Options{
			AdjustStock:     cfg.FeatureFlags.DispatchAdjustsStock,
			AggregatorOrgID: cfg.Org.AggregatorID,
		},
	)
	if err != nil {
		return routes.Services{}, err
	}

	dispatchSvc, err := dispatches.NewService(
		dispatches.NewRepository(gdb),
		dbClient,
		sequenceSvc,
		inventorySvc,
		productRepo,
		retailerRepo,
		activitySvc,
		dispatches.Options{
			AdjustStock:     cfg.FeatureFlags.DispatchAdjustsStock,
			AggregatorOrgID: cfg.Org.AggregatorID,
		},
	)
	if err != nil {
		return routes.Services{}, err
	}

	paymentSvc, err := payments.NewService(
		payments.NewRepository(gdb),
		dbClient,
		farmerRepo,
		retailerRepo,
		activitySvc,
	)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:         authSvc,
		Users:        userSvc,
		Cooperatives: coopSvc,
		Farmers:      farmerSvc,
		Products:     productSvc,
		Retailers:    retailerSvc,
		Procurements: procurementSvc,
		Inventory:    inventorySvc,
		Sales:        saleSvc,
		Dispatches:   dispatchSvc,
		Payments:     paymentSvc,
		Activities:   activitySvc,
	}, nil
}
