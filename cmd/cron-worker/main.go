package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/iotfarm-web/internal/autocancel"
	"github.com/angelmondragon/iotfarm-web/internal/cron"
	"github.com/angelmondragon/iotfarm-web/pkg/config"
	"github.com/angelmondragon/iotfarm-web/pkg/instance"
	"github.com/angelmondragon/iotfarm-web/pkg/iotfarm"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
	"github.com/angelmondragon/iotfarm-web/pkg/metrics"
	"github.com/angelmondragon/iotfarm-web/pkg/notify"
	"github.com/angelmondragon/iotfarm-web/pkg/redis"
)

const lockName = "cron-worker:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if !cfg.FeatureFlags.AutoCancel {
		logg.Warn(context.Background(), "auto-cancel disabled, cron worker has nothing to run")
		return
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

	statusTable, err := cfg.Orders.StatusTable()
	if err != nil {
		logg.Error(context.Background(), "invalid order status table", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()

	api, err := iotfarm.NewClient(cfg.API.BaseURL,
		iotfarm.WithTimeout(cfg.API.Timeout),
		iotfarm.WithObserver(metrics.NewRemoteAPIMetrics(registry)),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create iotfarm client", err)
		os.Exit(1)
	}

	notifier, err := notify.NewService(redisClient, cfg.Toast)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier", err)
		os.Exit(1)
	}

	scheduler, err := autocancel.NewScheduler(redisClient, statusTable, cfg.AutoCancel, metrics.NewAutoCancelMetrics(registry), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auto-cancel scheduler", err)
		os.Exit(1)
	}
	job, err := autocancel.NewJob(scheduler, api, notifier)
	if err != nil {
		logg.Error(context.Background(), "failed to create auto-cancel job", err)
		os.Exit(1)
	}

	// The lock outlives one cycle so a slow job never overlaps a second worker.
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 2*cfg.AutoCancel.ScanInterval)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(job),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(registry),
		Interval: cfg.AutoCancel.ScanInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.AutoCancel.ScanInterval.String(),
		"instance": instance.ID(),
	})

	metricsServer := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics listener stopped", err)
		}
	}()

	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockName, env)
}
