package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/rushikeshnarwade/sync-beats/internal/config"
	"github.com/rushikeshnarwade/sync-beats/internal/handler"
	"github.com/rushikeshnarwade/sync-beats/internal/middleware"
	"github.com/rushikeshnarwade/sync-beats/internal/pkg/cache"
	"github.com/rushikeshnarwade/sync-beats/internal/pkg/roomcode"
	"github.com/rushikeshnarwade/sync-beats/internal/service"
	"github.com/rushikeshnarwade/sync-beats/internal/ws"
)

// @title           SyncBeats API
// @version         1.0
// @description     Shared playback rooms with lockstep synchronization
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	logger.Info("Starting sync server",
		zap.String("mode", cfg.Server.Mode),
		zap.Int("port", cfg.Server.Port),
		zap.Duration("grace_period", cfg.Room.GracePeriod),
	)

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Redis is optional; without it the in-memory rate limiter is used
	// and search results are not cached.
	var redisClient *redis.Client
	if cfg.RateLimit.Backend == "redis" {
		redisClient, err = cache.NewRedis(&cfg.Redis, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer cache.Close(redisClient, logger)
	}

	// Initialize services
	roomService := service.NewRoomService(roomcode.NewGenerator(), cfg.Room.GracePeriod, logger)

	var catalogService *service.CatalogService
	if cfg.YouTube.APIKey != "" {
		catalogService, err = service.NewCatalogService(context.Background(), cfg.YouTube.APIKey, cfg.YouTube.MaxResults, logger)
		if err != nil {
			logger.Fatal("Failed to initialize catalog service", zap.Error(err))
		}
	} else {
		logger.Warn("No YouTube API key configured, catalog search disabled")
	}

	// Initialize WebSocket hub
	hub := ws.NewHub(roomService, logger)
	go hub.Run()

	// Initialize handlers
	var catalogHandler *handler.CatalogHandler
	if catalogService != nil {
		var searchCache *cache.Cache
		if redisClient != nil {
			searchCache = cache.NewCache(redisClient, logger)
		}
		catalogHandler = handler.NewCatalogHandler(catalogService, searchCache, logger)
	}
	healthHandler := handler.NewHealthHandler(redisClient)
	wsHandler := ws.NewHandler(hub, cfg.Sync, logger)

	// Setup router
	router := setupRouter(cfg, logger, redisClient, catalogHandler, healthHandler, wsHandler)

	// Create server
	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server is running",
			zap.String("addr", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func initLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	if format != "json" && format != "console" {
		format = "json"
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         format,
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}

	return logger
}

func setupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	redisClient *redis.Client,
	catalogHandler *handler.CatalogHandler,
	healthHandler *handler.HealthHandler,
	wsHandler *ws.Handler,
) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())

	// Health check
	router.GET("/health", healthHandler.Check)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// WebSocket endpoint
	router.GET("/ws", wsHandler.ServeWS)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(apiRateLimit(cfg, redisClient))
	{
		if catalogHandler != nil {
			search := v1.Group("/search")
			if redisClient != nil {
				search.Use(middleware.SearchRateLimit(redisClient, cfg.RateLimit.SearchRequests, cfg.RateLimit.SearchWindow))
			}
			search.GET("", catalogHandler.Search)
		}

		v1.GET("/rooms/stats", wsHandler.GetStats)
		v1.GET("/sync/config", wsHandler.GetSyncConfig)
	}

	return router
}

func apiRateLimit(cfg *config.Config, redisClient *redis.Client) gin.HandlerFunc {
	if cfg.RateLimit.Backend == "redis" && redisClient != nil {
		return middleware.APIRateLimit(redisClient, cfg.RateLimit.APIRequests(), cfg.RateLimit.Window)
	}
	limiter := middleware.NewInMemoryRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	return middleware.RateLimit(limiter)
}
