package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/dms-api/api/swagger"
	"github.com/noah-isme/dms-api/internal/handler"
	"github.com/noah-isme/dms-api/internal/middleware"
	"github.com/noah-isme/dms-api/internal/models"
	"github.com/noah-isme/dms-api/internal/repository"
	"github.com/noah-isme/dms-api/internal/service"
	"github.com/noah-isme/dms-api/pkg/cache"
	"github.com/noah-isme/dms-api/pkg/config"
	"github.com/noah-isme/dms-api/pkg/database"
	"github.com/noah-isme/dms-api/pkg/jobs"
	"github.com/noah-isme/dms-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/dms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/dms-api/pkg/middleware/requestid"
)

// @title DMS API
// @version 0.1.0
// @description Document management service with approval workflow
// @BasePath /
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheService *service.CacheService
	metricsService := service.NewMetricsService()
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient)
			defer cacheRepo.Close() //nolint:errcheck
			cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Cache.TTL, logr, true)
		}
	}

	userRepo := repository.NewUserRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	validate := validator.New()

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	documentService := service.NewDocumentService(documentRepo, cacheService, validate, cfg.Documents, logr)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, logr)

	queue := jobs.NewQueue("notifications", notificationService.Handle, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	})
	queue.Start(context.Background())
	defer queue.Stop()
	notificationService.AttachQueue(queue)

	approvalOpts := []service.ApprovalServiceOption{
		service.WithApprovalNotifier(notificationService),
	}
	if cacheService != nil {
		approvalOpts = append(approvalOpts, service.WithApprovalCache(cacheService))
	}
	approvalService := service.NewApprovalService(documentRepo, requestRepo, logr, approvalOpts...)

	authHandler := handler.NewAuthHandler(authService)
	documentHandler := handler.NewDocumentHandler(documentService, approvalService)
	requestHandler := handler.NewRequestHandler(approvalService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)

	authed := r.Group("/", middleware.JWT(authService))
	authed.GET("/me", authHandler.Me)

	authed.POST("/documents", documentHandler.Create)
	authed.GET("/documents", documentHandler.List)
	if cfg.Exports.Enabled {
		authed.GET("/documents/export", middleware.RequireRoles(models.RoleAdmin), documentHandler.Export)
	}
	authed.GET("/documents/:id", documentHandler.Get)
	authed.DELETE("/documents/:id", documentHandler.RequestDelete)
	authed.PUT("/documents/:id/replace", documentHandler.RequestReplace)

	admin := authed.Group("/requests", middleware.RequireRoles(models.RoleAdmin))
	admin.GET("", requestHandler.List)
	admin.POST("/:id/approve", requestHandler.Approve)
	admin.POST("/:id/reject", requestHandler.Reject)

	authed.GET("/notifications", notificationHandler.List)
	authed.POST("/notifications/:id/read", notificationHandler.MarkRead)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
