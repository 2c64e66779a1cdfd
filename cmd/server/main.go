package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contriboard/contriboard/internal/handlers"
	"github.com/contriboard/contriboard/internal/repositories"
	"github.com/contriboard/contriboard/internal/services"
	"github.com/contriboard/contriboard/pkg/cache"
	"github.com/contriboard/contriboard/pkg/config"
	"github.com/contriboard/contriboard/pkg/database"
	"github.com/contriboard/contriboard/pkg/logger"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := database.Init(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize cache. An unreachable Redis only disables caching, it
	// never blocks the service.
	cacheStore := cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer cacheStore.Close()
	if err := cacheStore.Ping(context.Background()); err != nil {
		logger.WithError(err).Warnf("Redis unreachable at %s, requests will recompute", cfg.Redis.Addr)
	}

	ttl := time.Duration(cfg.Sync.CacheTTL) * time.Second
	requestTimeout := time.Duration(cfg.Sync.RequestTimeout) * time.Second

	// Initialize dependencies
	recordRepo := repositories.NewLeaderboardRecordRepository(db)
	userCache := services.NewUserCacheService(cacheStore, ttl)
	leaderboardService := services.NewLeaderboardService(recordRepo, userCache)
	pointsService := services.NewPointsService(services.DefaultPointConfig())
	aggregatorService := services.NewAggregatorService(pointsService)
	githubService := services.NewGitHubService(cfg.GitHub.Token)
	syncService := services.NewSyncService(githubService, aggregatorService, leaderboardService, requestTimeout)
	cacheService := services.NewLeaderboardCacheService(cacheStore, syncService, leaderboardService, ttl)

	// Start the daily sync scheduler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	schedulerService := services.NewSchedulerService(cacheService, cfg.Sync.Repositories, cfg.Sync.Hour)
	schedulerService.Start(ctx)

	// Initialize router
	router := gin.Default()
	setupRoutes(router, cacheService, leaderboardService, userCache)

	// Setup server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Infof("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}

	logger.Infof("Server stopped")
}

func setupRoutes(router *gin.Engine, cacheService *services.LeaderboardCacheService, leaderboardService *services.LeaderboardService, userCache *services.UserCacheService) {
	// Initialize handlers
	leaderboardHandler := handlers.NewLeaderboardHandler(cacheService)
	syncHandler := handlers.NewSyncHandler(cacheService)
	userHandler := handlers.NewUserHandler(leaderboardService, userCache)
	healthHandler := handlers.NewHealthHandler()

	api := router.Group("/api")
	{
		api.POST("/repos/:owner/:repo/sync", syncHandler.TriggerSync)
		api.GET("/repos/:owner/:repo/leaderboard", leaderboardHandler.GetLeaderboard)
		api.GET("/repos/:owner/:repo/leaderboard/export", leaderboardHandler.ExportLeaderboard)
		api.GET("/users/:username", userHandler.GetUser)
		api.PATCH("/users/:username/points", userHandler.AdjustPoints)
		api.PUT("/users/:username/type", userHandler.SetUserType)
	}

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)
}
