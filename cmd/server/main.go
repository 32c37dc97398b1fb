package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"parquet-dataset/internal/config"
	"parquet-dataset/internal/controller"
	"parquet-dataset/internal/metrics"
	"parquet-dataset/internal/middleware"
	"parquet-dataset/internal/model"
	"parquet-dataset/internal/router"
	"parquet-dataset/internal/service"
	"parquet-dataset/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(os.Stdout, cfg.Logging)
	slog.SetDefault(logger)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Error("failed to initialize storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	backend := model.StorageBackend(cfg.Storage.Backend)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var rateLimiter *middleware.RateLimiter
	if cfg.Security.EnableRateLimit {
		rateLimiter = middleware.NewRateLimiter(ctx, middleware.RateLimiterConfig{
			RPM:             cfg.Security.RateLimitPerMinute,
			Burst:           cfg.Security.RateLimitBurst,
			CleanupInterval: 5 * time.Minute,
		})
	}

	datasetService := service.NewDatasetService(fs, backend, cfg.Dataset, m, logger)

	engine := router.New(router.Deps{
		Logger:      logger,
		Metrics:     m,
		Gatherer:    reg,
		RateLimiter: rateLimiter,
		Health:      controller.NewHealthController(backend),
		Dataset:     controller.NewDatasetController(datasetService),
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", srv.Addr, "storage", backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if c, ok := fs.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warn("failed to close storage", "error", err)
		}
	}
	logger.Info("server stopped")
}
