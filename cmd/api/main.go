package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/iotfarm-web/api/controllers"
	"github.com/angelmondragon/iotfarm-web/api/routes"
	"github.com/angelmondragon/iotfarm-web/internal/auth"
	"github.com/angelmondragon/iotfarm-web/internal/autocancel"
	"github.com/angelmondragon/iotfarm-web/internal/backoffice"
	"github.com/angelmondragon/iotfarm-web/internal/cart"
	"github.com/angelmondragon/iotfarm-web/internal/catalog"
	"github.com/angelmondragon/iotfarm-web/internal/checkout"
	"github.com/angelmondragon/iotfarm-web/internal/feedback"
	"github.com/angelmondragon/iotfarm-web/internal/orders"
	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	"github.com/angelmondragon/iotfarm-web/pkg/config"
	"github.com/angelmondragon/iotfarm-web/pkg/db"
	"github.com/angelmondragon/iotfarm-web/pkg/instance"
	"github.com/angelmondragon/iotfarm-web/pkg/iotfarm"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
	"github.com/angelmondragon/iotfarm-web/pkg/metrics"
	"github.com/angelmondragon/iotfarm-web/pkg/notify"
	"github.com/angelmondragon/iotfarm-web/pkg/redis"
	"github.com/angelmondragon/iotfarm-web/pkg/storage/s3"
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

	// Prices go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx := context.Background()

	statusTable, err := cfg.Orders.StatusTable()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	pingers := map[string]controllers.Pinger{"redis": redisClient}

	api, err := iotfarm.NewClient(cfg.API.BaseURL,
		iotfarm.WithTimeout(cfg.API.Timeout),
		iotfarm.WithObserver(metrics.NewRemoteAPIMetrics(registry)),
	)
	if err != nil {
		return err
	}

	notifier, err := notify.NewService(redisClient, cfg.Toast)
	if err != nil {
		return err
	}

	sessionManager, err := session.NewManager(redisClient, cfg.Session, cfg.JWT)
	if err != nil {
		return err
	}

	var cartStore cart.Store
	if cfg.Cart.Backend == config.CartBackendSQL {
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return err
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(ctx, "error closing database", err)
			}
		}()
		sqlStore, err := cart.NewSQLStore(dbClient.DB(), logg)
		if err != nil {
			return err
		}
		if err := sqlStore.Migrate(ctx); err != nil {
			return err
		}
		cartStore = sqlStore
		pingers["database"] = dbClient
	} else {
		redisStore, err := cart.NewRedisStore(redisClient, cfg.Cart.TTL, logg)
		if err != nil {
			return err
		}
		cartStore = redisStore
	}

	cartService, err := cart.NewService(cartStore, api, notifier, logg)
	if err != nil {
		return err
	}

	var autoCancel orders.AutoCanceller
	if cfg.FeatureFlags.AutoCancel {
		scheduler, err := autocancel.NewScheduler(redisClient, statusTable, cfg.AutoCancel, metrics.NewAutoCancelMetrics(registry), logg)
		if err != nil {
			return err
		}
		autoCancel = scheduler
	}

	orderService, err := orders.NewService(api, statusTable, autoCancel, notifier, logg)
	if err != nil {
		return err
	}

	checkoutService, err := checkout.NewService(cartService, api, autoCancel, notifier, logg)
	if err != nil {
		return err
	}

	feedbackService, err := feedback.NewService(api, statusTable, notifier, logg)
	if err != nil {
		return err
	}

	var catalogService catalog.Service
	if cfg.Storage.Enabled() {
		storage, err := s3.NewClient(ctx, cfg.Storage, logg)
		if err != nil {
			return err
		}
		catalogService, err = catalog.NewService(api, storage, cfg.Media.MaxUploadBytes(), notifier, logg)
		if err != nil {
			return err
		}
	} else {
		catalogService, err = catalog.NewService(api, nil, cfg.Media.MaxUploadBytes(), notifier, logg)
		if err != nil {
			return err
		}
	}

	accounts, err := backoffice.NewAccountsService(api)
	if err != nil {
		return err
	}
	farm, err := backoffice.NewFarmService(api)
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		API:            api,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	router := routes.NewRouter(routes.Dependencies{
		Config:        cfg,
		Logger:        logg,
		Sessions:      sessionManager,
		RateLimiter:   redisClient,
		Pingers:       pingers,
		Metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Auth:          authService,
		Notifications: notifier,
		Cart:          cartService,
		Checkout:      checkoutService,
		Orders:        orderService,
		Feedback:      feedbackService,
		Catalog:       catalogService,
		Accounts:      accounts,
		Farm:          farm,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"cart_backend": cfg.Cart.Backend,
		"autocancel":   cfg.FeatureFlags.AutoCancel,
		"instance":     instance.ID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
	}

	logg.Info(ctx, "api server shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
