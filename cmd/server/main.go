package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/weatherq/weather-query-api/internal/api/handlers"
	"github.com/weatherq/weather-query-api/internal/config"
	"github.com/weatherq/weather-query-api/internal/database"
	"github.com/weatherq/weather-query-api/internal/health"
	"github.com/weatherq/weather-query-api/internal/middleware"
	"github.com/weatherq/weather-query-api/internal/migration"
	"github.com/weatherq/weather-query-api/internal/ratelimit"
	"github.com/weatherq/weather-query-api/internal/repository"
	"github.com/weatherq/weather-query-api/internal/services"
	"github.com/weatherq/weather-query-api/internal/weather"
	"github.com/weatherq/weather-query-api/pkg/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	// Initialize logger
	logger := utils.GetLogger()
	logger.Info("Starting weather query API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.ValidateOpenWeather(); err != nil {
		logger.WithError(err).Fatal("OpenWeather configuration validation failed")
	}

	// Initialize database
	dbConfig := &database.Config{
		DatabaseURL: cfg.Database.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}

	dbManager, err := database.NewManager(dbConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := migration.NewRunner(dbManager, logger).RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Database migrations failed")
	}

	// Wire services
	repo := repository.NewWeatherQueryRepository(dbManager.DB)
	limiter := ratelimit.NewLimiter(cfg.RateLimit.PerMinute)
	gateway := weather.NewClient(cfg.OpenWeather.BaseURL, cfg.OpenWeather.APIKey, cfg.OpenWeather.Timeout, logger)
	queryService := services.NewQueryService(repo, gateway, limiter, logger)
	checker := health.NewChecker(repo, logger)

	weatherHandler := handlers.NewWeatherHandler(queryService, logger)
	historyHandler := handlers.NewHistoryHandler(repo, logger)
	healthHandler := handlers.NewHealthHandler(checker)

	// Set up routes
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.SecurityHeaders(),
		middleware.ClientIdentity(middleware.ForwardedForIdentity),
		middleware.RequestLogger(logger),
	)

	router.POST("/weather", weatherHandler.HandleWeather)
	router.GET("/history", historyHandler.HandleHistory)
	router.GET("/health", healthHandler.HandleHealth)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Wait for shutdown signal, then drain
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
	logger.Info("Server stopped")
}
