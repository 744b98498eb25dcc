package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/workforce-api/internal/handler"
	"github.com/noah-isme/workforce-api/internal/middleware"
	"github.com/noah-isme/workforce-api/internal/models"
	"github.com/noah-isme/workforce-api/internal/service"
	"github.com/noah-isme/workforce-api/pkg/config"
	"github.com/noah-isme/workforce-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/workforce-api/pkg/middleware/cors"
	"github.com/noah-isme/workforce-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/workforce-api/pkg/middleware/requestid"
)

type routeDeps struct {
	tokens       middleware.TokenValidator
	metrics      *service.MetricsService
	health       *handler.MetricsHandler
	recurrence   *handler.RecurrenceHandler
	availability *handler.AvailabilityHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, handler.TenantLogFields))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))

	r.GET("/health", deps.health.Health)
	r.GET("/ready", deps.health.Ready)
	r.GET("/metrics", deps.health.Prometheus)

	if cfg.Swagger.Enabled && cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	limiter := ratelimit.NewStore(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	api := r.Group(cfg.APIPrefix)
	api.Use(ratelimit.Middleware(limiter, logr))

	recurrence := api.Group("/recurrence")
	recurrence.POST("/validate", deps.recurrence.Validate)
	recurrence.POST("/expand", deps.recurrence.Expand)
	recurrence.POST("/exceptions", deps.recurrence.ToggleException)
	recurrence.POST("/export", deps.recurrence.Export)
	recurrence.DELETE("/cache", middleware.JWT(deps.tokens), middleware.RequireRoles(models.RoleOwner), deps.recurrence.ClearCache)

	availability := api.Group("/availability", middleware.JWT(deps.tokens))
	availability.GET("", deps.availability.List)
	availability.GET("/:id", deps.availability.Get)
	availability.POST("/conflicts", deps.availability.Preview)
	availability.POST("", deps.availability.Create)
	availability.DELETE("/:id", deps.availability.Delete)

	subjects := api.Group("/subjects/:subjectId", middleware.JWT(deps.tokens))
	subjects.GET("/availability",
		middleware.RBAC(string(models.RoleOwner), string(models.RoleManager), middleware.SelfAccess),
		deps.availability.ListForSubject,
	)

	return r
}
