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
	"github.com/joho/godotenv"
	"github.com/treadlab/fitment/internal/config"
	"github.com/treadlab/fitment/internal/handlers"
	"github.com/treadlab/fitment/internal/logger"
	"github.com/treadlab/fitment/internal/mesh"
	"github.com/treadlab/fitment/internal/middleware"
	"github.com/treadlab/fitment/internal/services"
	"github.com/treadlab/fitment/internal/store"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// A local .env is optional; real deployments configure through the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("Starting fitment API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Load the wheel database. A missing file is a clean first run.
	repo := store.New()
	if err := repo.Load(cfg.Store.DatabaseFile); err != nil {
		log.Fatal("Failed to load wheel database", err, map[string]interface{}{
			"path": cfg.Store.DatabaseFile,
		})
	}
	log.Info("Wheel database loaded", map[string]interface{}{
		"path":   cfg.Store.DatabaseFile,
		"wheels": len(repo.WheelNames()),
	})

	gen := mesh.NewGenerator(mesh.Options{
		Segments:    cfg.Mesh.Segments,
		TreadPoints: cfg.Mesh.TreadPoints,
	})

	fitmentService := services.NewFitmentService(repo, gen, log,
		cfg.Store.DatabaseFile, cfg.Store.ExportDir)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(repo, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize handlers
	wheelHandler := handlers.NewWheelHandler(fitmentService)
	geometryHandler := handlers.NewGeometryHandler(fitmentService)
	databaseHandler := handlers.NewDatabaseHandler(fitmentService)
	importHandler := handlers.NewImportHandler(fitmentService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		wheels := v1.Group("/wheels")
		{
			wheels.GET("", wheelHandler.List)
			wheels.POST("", wheelHandler.Create)
			wheels.GET("/:name", wheelHandler.Get)
			wheels.PUT("/:name", wheelHandler.Replace)
			wheels.DELETE("/:name", wheelHandler.Delete)
			wheels.GET("/:name/tires", wheelHandler.Tires)
			wheels.POST("/:name/tires", wheelHandler.AddTire)
			wheels.POST("/:name/import", importHandler.Import)
			wheels.GET("/:name/sheet.pdf", databaseHandler.Sheet)
		}
		tires := v1.Group("/tires")
		{
			tires.POST("/mesh", geometryHandler.Mesh)
		}
		db := v1.Group("/database")
		{
			db.POST("/save", databaseHandler.Save)
			db.POST("/export", databaseHandler.Export)
			db.GET("/snapshot", databaseHandler.Snapshot)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	// Persist any in-memory changes before exiting.
	if err := repo.Save(cfg.Store.DatabaseFile); err != nil {
		log.Error("Failed to save wheel database on shutdown", err, map[string]interface{}{
			"path": cfg.Store.DatabaseFile,
		})
	} else {
		log.Info("Wheel database saved", map[string]interface{}{
			"path": cfg.Store.DatabaseFile,
		})
	}

	log.Info("Server exited", nil)
}
