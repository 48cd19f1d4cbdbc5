package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/alimgiray/glscope/internal/handlers"
	"github.com/alimgiray/glscope/internal/middleware"
	"github.com/alimgiray/glscope/internal/repositories"
	"github.com/alimgiray/glscope/internal/services"
	"github.com/alimgiray/glscope/internal/workers"
	"github.com/alimgiray/glscope/pkg/config"
	"github.com/alimgiray/glscope/pkg/database"
	"github.com/alimgiray/glscope/pkg/logger"
	"github.com/alimgiray/glscope/pkg/metrics"
)

func main() {
	logger.Init()
	log := logger.GetLogger()

	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	if err := database.Init(cfg.Database.Path); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Errorf("Failed to close database: %v", err)
		}
	}()

	// Initialize dependencies
	analysisService := services.NewAnalysisService(services.FetcherOptions{
		Timeout:    cfg.Fetch.Timeout,
		Retries:    cfg.Fetch.Retries,
		RetryDelay: cfg.Fetch.RetryDelay,
	}, log)
	runRepo := repositories.NewRunRepository(database.DB)
	runService := services.NewRunService(runRepo, analysisService)

	// Runs left over from a previous process lost their tokens
	interrupted, err := runService.RecoverInterrupted()
	if err != nil {
		logger.Fatalf("Failed to recover runs: %v", err)
	}
	if interrupted > 0 {
		logger.Warnf("Marked %d interrupted runs as failed", interrupted)
	}

	// Initialize worker manager
	workerManager := workers.NewWorkerManager(runService, log)

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	setupRoutes(router, cfg, analysisService, runService, workerManager)

	// Start workers
	logger.Infof("Starting %d analysis workers", cfg.Workers.Count)
	if err := workerManager.StartAll(cfg.Workers.Count, cfg.Workers.PollInterval); err != nil {
		logger.Fatalf("Failed to start workers: %v", err)
	}

	// Setup server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.WithFields(logrus.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
	workerManager.StopAll()

	log.Info("Server stopped")
}

func setupRoutes(router *gin.Engine, cfg *config.Config, analyzer services.Analyzer, runService *services.RunService, workerManager *workers.WorkerManager) {
	// Initialize handlers
	analysisHandler := handlers.NewAnalysisHandler(analyzer, runService, logger.GetLogger())
	healthHandler := handlers.NewHealthHandler(workerManager)

	api := router.Group("/api")
	api.Use(middleware.APIKeyRequired(cfg.Server.APIKey))
	{
		api.POST("/analyze", analysisHandler.Analyze)
		api.POST("/runs", analysisHandler.CreateRun)
		api.GET("/runs", analysisHandler.ListRuns)
		api.GET("/runs/:id", analysisHandler.GetRun)
		api.GET("/runs/:id/report.xlsx", analysisHandler.ExportRun)
	}

	// Health check and metrics endpoints
	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.NoRoute(healthHandler.NotFound)
}
