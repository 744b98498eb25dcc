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
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/workforce-api/api/swagger"
	"github.com/noah-isme/workforce-api/internal/handler"
	"github.com/noah-isme/workforce-api/internal/repository"
	"github.com/noah-isme/workforce-api/internal/service"
	"github.com/noah-isme/workforce-api/pkg/cache"
	"github.com/noah-isme/workforce-api/pkg/config"
	"github.com/noah-isme/workforce-api/pkg/database"
	"github.com/noah-isme/workforce-api/pkg/export"
	"github.com/noah-isme/workforce-api/pkg/jobs"
	"github.com/noah-isme/workforce-api/pkg/logger"
)

// @title Workforce Availability API
// @version 1.0.0
// @description Recurring availability, shift and booking blocks with conflict detection.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Availability.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, availability cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	app := buildApp(cfg, logr, db, redisClient)

	app.notifications.Start(ctx)
	if err := app.scheduler.Start(); err != nil {
		logr.Fatal("cache reset scheduler failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	app.scheduler.Stop(shutdownCtx)
	app.notifications.Stop()
	if app.cacheRepo != nil {
		_ = app.cacheRepo.Close()
	}
}

type application struct {
	router        *gin.Engine
	notifications *jobs.Queue
	scheduler     *service.CacheResetScheduler
	cacheRepo     *repository.CacheRepository
}

func buildApp(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client) *application {
	validate := validator.New()
	metrics := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, "workforce", logr)
	}
	var cacheBackend service.CacheRepository
	if cacheRepo != nil {
		cacheBackend = cacheRepo
	}
	cacheSvc := service.NewCacheService(cacheBackend, metrics, cfg.Availability.CacheTTL, logr, cacheRepo != nil)

	generator := service.NewOccurrenceGenerator(metrics)
	classifier := service.NewConflictClassifier(metrics)
	recurrenceSvc := service.NewRecurrenceService(
		generator,
		export.NewCSVExporter(),
		export.NewPDFExporter(),
		validate,
		logr,
		service.RecurrenceConfig{MaxOccurrences: cfg.Recurrence.MaxOccurrences},
	)

	notificationSvc := service.NewNotificationService(nil, metrics, logr)
	queue := jobs.NewQueue("availability-events", notificationSvc.Handle, jobs.QueueConfig{
		Workers:     cfg.Notifications.Workers,
		MaxRetries:  cfg.Notifications.Retries,
		Logger:      logr,
		OnExhausted: notificationSvc.Exhausted,
	})
	notificationSvc.SetQueue(queue)

	blockRepo := repository.NewAvailabilityBlockRepository(db)
	availabilitySvc := service.NewAvailabilityService(
		blockRepo,
		blockRepo,
		recurrenceSvc,
		generator,
		classifier,
		cacheSvc,
		notificationSvc,
		metrics,
		validate,
		logr,
		service.AvailabilityConfig{CacheTTL: cfg.Availability.CacheTTL},
	)

	scheduler, err := service.NewCacheResetScheduler(cfg.Recurrence.CacheResetCron, recurrenceSvc, logr)
	if err != nil {
		logr.Fatal("invalid cache reset schedule", zap.Error(err))
	}

	dependencies := map[string]handler.Pinger{"postgres": db}
	if cacheRepo != nil {
		dependencies["redis"] = cacheRepo
	}

	router := newRouter(cfg, logr, routeDeps{
		tokens:       service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer}),
		metrics:      metrics,
		health:       handler.NewMetricsHandler(metrics, dependencies),
		recurrence:   handler.NewRecurrenceHandler(recurrenceSvc),
		availability: handler.NewAvailabilityHandler(availabilitySvc),
	})

	return &application{router: router, notifications: queue, scheduler: scheduler, cacheRepo: cacheRepo}
}
