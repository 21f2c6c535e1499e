package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/buildtrack/buildtrack/internal/app/config"
	"github.com/buildtrack/buildtrack/internal/app/server"
	appservices "github.com/buildtrack/buildtrack/internal/app/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/buildtrack/buildtrack/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.NewWithLevel(logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.GetDatabaseURL())
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	// SQLite is the local development store; Postgres schemas are managed with cmd/migrate.
	if !db.IsPostgres() || !cfg.IsProduction() {
		if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
			log.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	sm, err := appservices.NewServiceManager(cfg, db, log)
	if err != nil {
		log.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg, log, sm)

	// Start server in goroutine
	go func() {
		log.Info("Starting BuildTrack server", "port", cfg.Server.Port, "environment", cfg.Environment, "storage", cfg.Storage.Type)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server shutdown complete")
}
