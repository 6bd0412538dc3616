// Package main runs the Tsunagu community-events HTTP server with
// graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tsunagu-app/backend/config"
	"github.com/tsunagu-app/backend/internal/analytics"
	"github.com/tsunagu-app/backend/internal/applications"
	"github.com/tsunagu-app/backend/internal/auth"
	"github.com/tsunagu-app/backend/internal/emaillogs"
	"github.com/tsunagu-app/backend/internal/events"
	"github.com/tsunagu-app/backend/internal/middleware"
	"github.com/tsunagu-app/backend/internal/models"
	"github.com/tsunagu-app/backend/internal/profiles"
	"github.com/tsunagu-app/backend/internal/views"
	"github.com/tsunagu-app/backend/pkg/database"
	"github.com/tsunagu-app/backend/pkg/queue"
	"github.com/tsunagu-app/backend/pkg/redis"
	"github.com/tsunagu-app/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Profiles
	profileRepo := profiles.NewRepository(pool)
	profileHandler := profiles.NewHandler(profileRepo, logger)

	// Events
	eventRepo := events.NewRepository(pool)
	listingCache := events.NewListingCache(rdb.Client, time.Duration(cfg.Events.CacheTTLSeconds)*time.Second, logger)
	eventHandler := events.NewHandler(eventRepo, profileRepo, listingCache, cfg.Events.DefaultListLimit, logger)

	// Application lifecycle
	appRepo := applications.NewRepository(pool)
	appService := applications.NewService(appRepo, eventRepo, profileRepo, logger)
	appHandler := applications.NewHandler(appService, eventRepo, authRepo, jobQueue, logger)

	// Assembled views
	assembler := views.NewAssembler(appService, eventRepo, profileRepo, logger)
	viewHandler := views.NewHandler(assembler)

	// Organizer analytics
	analyticsHandler := analytics.NewHandler(eventRepo, appRepo)

	// Notification audit trail
	emailLogRepo := emaillogs.NewRepository(pool)
	emailLogHandler := emaillogs.NewHandler(emailLogRepo, appRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Public event browsing
	router.GET("/events", eventHandler.List)
	router.GET("/events/:id", eventHandler.Get)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/me", profileHandler.Me)

		// Profiles
		api.POST("/profiles", profileHandler.Create)
		api.PATCH("/profiles/me", profileHandler.Update)
		api.GET("/profiles", profileHandler.List)
		api.GET("/profiles/:uid", profileHandler.Get)

		// Events (organizer side)
		api.POST("/events", eventHandler.Create)
		api.GET("/me/events", eventHandler.Mine)
		api.PATCH("/events/:id", eventHandler.Update)
		api.DELETE("/events/:id", eventHandler.Deactivate)
		api.GET("/events/:id/stats", analyticsHandler.EventStats)
		api.GET("/events/:id/applications", appHandler.ListByEvent)
		api.GET("/events/:id/my-status", viewHandler.EventStatus)

		// Applications
		api.POST("/events/:id/apply", appHandler.Apply)
		api.GET("/applications", viewHandler.MyApplications)
		api.GET("/organizer/applications", middleware.RequireRole(string(models.RoleOrg)), viewHandler.OrganizerApplications)
		api.PATCH("/applications/:id/status", appHandler.SetStatus)
		api.POST("/applications/:id/cancel", appHandler.Cancel)
		api.GET("/applications/:id/emails", emailLogHandler.ListByApplication)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
