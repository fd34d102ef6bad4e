package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-coverage-api/api/swagger"
	"github.com/noah-isme/sma-coverage-api/internal/app"
	"github.com/noah-isme/sma-coverage-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-coverage-api/internal/middleware"
	"github.com/noah-isme/sma-coverage-api/pkg/config"
	"github.com/noah-isme/sma-coverage-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-coverage-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-coverage-api/pkg/middleware/requestid"
)

// @title SMA Coverage API
// @version 1.0.0
// @description Assigns covering staff to the periods of absent teachers and paraprofessionals.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	// Workers outlive the signal context so pending notifications can be flushed on shutdown.
	container, err := app.NewContainer(context.Background(), cfg, logr)
	if err != nil {
		logr.Fatal("failed to build container", zap.Error(err))
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(container.Metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	checks := map[string]handler.Pinger{
		"database": handler.PingFunc(container.DB.PingContext),
	}
	if container.RedisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return container.RedisClient.Ping(ctx).Err()
		})
	}
	metricsHandler := handler.NewMetricsHandler(container.Metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	handler.NewCoverageHandler(container.Coverage).Register(api)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	if err := container.Notifications.Flush(shutdownCtx); err != nil {
		logr.Warn("pending notifications not delivered", zap.Error(err))
	}
}
