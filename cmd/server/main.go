package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/upforaride/server/internal/api"
	"github.com/upforaride/server/internal/config"
	"github.com/upforaride/server/internal/logging"
	"github.com/upforaride/server/internal/models"
	"github.com/upforaride/server/internal/ocr"
	"github.com/upforaride/server/internal/repository"
	"github.com/upforaride/server/internal/service"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	logger := logging.NewLogger(cfg.Server.LogLevel)

	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		logger.Error("failed to set up database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Create repository
	repo := repository.NewSQLRepository(db)

	// Create service with the static roster
	svc := service.NewDefaultService(repo, models.DefaultUsers())

	// OCR proxy is optional; without a key the endpoint reports an error
	var ocrClient *ocr.Client
	if cfg.Ocr.APIKey != "" {
		ocrClient = ocr.NewClient(cfg.Ocr.APIKey, cfg.Ocr.Endpoint, cfg.Ocr.Timeout)
	} else {
		logger.Warn("OCR_SPACE_API_KEY not set, odometer OCR disabled")
	}

	// Create API handler
	handler := api.NewHandler(svc, ocrClient, logger)

	// Set up Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.CORSMiddleware())
	router.Use(api.ObservabilityMiddleware(logger))

	// Set up routes
	handler.SetupRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("starting server", "addr", serverAddr, "db_driver", cfg.Database.Driver)
	if err := http.ListenAndServe(serverAddr, router); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
