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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/canteen-central/canteen-api/api/swagger"
	"github.com/canteen-central/canteen-api/internal/handler"
	"github.com/canteen-central/canteen-api/internal/middleware"
	"github.com/canteen-central/canteen-api/internal/models"
	"github.com/canteen-central/canteen-api/internal/realtime"
	"github.com/canteen-central/canteen-api/internal/repository"
	"github.com/canteen-central/canteen-api/internal/service"
	"github.com/canteen-central/canteen-api/internal/workflow"
	"github.com/canteen-central/canteen-api/pkg/cache"
	"github.com/canteen-central/canteen-api/pkg/config"
	"github.com/canteen-central/canteen-api/pkg/database"
	"github.com/canteen-central/canteen-api/pkg/jobs"
	"github.com/canteen-central/canteen-api/pkg/logger"
	corsmiddleware "github.com/canteen-central/canteen-api/pkg/middleware/cors"
	reqidmiddleware "github.com/canteen-central/canteen-api/pkg/middleware/requestid"
)

// @title Canteen Central API
// @version 1.0.0
// @description Financial reporting backend for school canteen operations
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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	reportRepo := repository.NewReportRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()

	// Realtime gateway and connection registry.
	registry := realtime.NewRegistry(logr)

	metricsSvc := service.NewMetricsService(registry)

	// Services.
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "canteen-central",
		Audience:           []string{"canteen-api"},
	})

	gateway := realtime.NewGateway(registry, authSvc, logr)

	notificationSvc := service.NewNotificationService(notificationRepo, registry, jobs.QueueConfig{
		Workers:    cfg.Notifications.WorkerConcurrency,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.WorkerRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	}, logr, service.WithDeliveryObserver(metricsSvc))

	transitions := workflow.NewTransitions(workflow.TransitionsConfig{
		ArchiveFromAny: cfg.Workflow.ArchiveFromAny,
	})

	statusSvc := service.NewReportStatusService(reportRepo, transitions, logr,
		service.WithStatusNotifier(notificationSvc),
		service.WithTransitionObserver(metricsSvc),
		service.WithInsightCacheInvalidator(cacheRepo),
	)
	reportSvc := service.NewReportService(reportRepo, userRepo, transitions, logr)

	var completer service.TextCompleter
	if cfg.AI.Enabled {
		anthropicCompleter, err := service.NewAnthropicCompleter(cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			logr.Sugar().Warnw("ai assistant disabled", "error", err)
		} else {
			completer = anthropicCompleter
		}
	}
	aiSvc := service.NewAIService(completer, schoolRepo, reportRepo, cacheRepo, cfg.AI.CacheTTL, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	reportHandler := handler.NewReportHandler(reportSvc, statusSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	aiHandler := handler.NewAIHandler(aiSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/ws", gateway.Handle)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	reports := protected.Group("/reports")
	reports.GET("/monthly/:schoolId/:year/:month", reportHandler.GetMonthly)
	reports.POST("/monthly/:schoolId/:year/:month",
		middleware.RequireRoles(models.RoleCanteenManager), reportHandler.CreateMonthly)
	reports.PATCH("/monthly/:schoolId/:year/:month/status", reportHandler.ChangeStatus(models.KindMonthly))
	reports.PATCH("/daily/:schoolId/:year/:month/status", reportHandler.ChangeStatus(models.KindDailyFinancial))
	reports.PATCH("/payroll/:schoolId/:year/:month/status", reportHandler.ChangeStatus(models.KindPayroll))
	reports.PATCH("/voucher/:schoolId/:year/:month/status", reportHandler.ChangeStatus(models.KindDisbursementVoucher))
	reports.PATCH("/liquidation/:schoolId/:year/:month/:category/status", reportHandler.ChangeStatus(models.KindLiquidation))
	reports.GET("/monthly/:schoolId/:year/:month/status-options", reportHandler.StatusOptions)
	reports.GET("/monthly/:schoolId/:year/:month/export", reportHandler.Export)
	reports.GET("/monthly/:schoolId/:year/:month/summary", reportHandler.FinancialSummary)

	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.List)
	notifications.GET("/unread-count", notificationHandler.UnreadCount)
	notifications.POST("/:id/archive", notificationHandler.Archive)

	ai := protected.Group("/ai")
	ai.GET("/status", aiHandler.Status)
	ai.POST("/insights", aiHandler.Insights)
	ai.POST("/chat", aiHandler.Chat)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notificationSvc.Start(rootCtx)
	defer notificationSvc.Stop()

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
