package main

import (
	"context"
	"log"

	"cytodash/internal"
	"cytodash/internal/config"
	"cytodash/internal/container"
	"cytodash/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Log.Level))
	internal.DefaultLogger = logger
	gin.SetMode(appConfig.Server.GinMode)

	// Create dependency injection container
	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	// Ingest once; a failure is served as 503 rather than aborting startup
	if err := appContainer.LoadDataset(context.Background()); err != nil {
		logger.Warn("[Main] starting without data: %v", err)
	}

	server, err := ui.NewServer(appContainer.Dashboard, appContainer.LoadErr, logger)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if err := server.Start(appConfig.Addr()); err != nil {
		logger.Error("[Main] server stopped: %v", err)
	}
}
