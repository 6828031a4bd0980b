package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpapi "github.com/yassirbousseta123/car-rent-v1/internal/api/http"
	"github.com/yassirbousseta123/car-rent-v1/internal/app"
	"github.com/yassirbousseta123/car-rent-v1/internal/config"
	"github.com/yassirbousseta123/car-rent-v1/internal/logger"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	envFile := flag.String("env", ".env", "Optional dotenv file loaded before the configuration")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting vehicle reservation server...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "request_timeout", cfg.RequestTimeout())
	logger.Info("Store configuration", "driver", cfg.Database.Driver, "lock", cfg.Lock.Type, "events", cfg.Events.Type)

	application, err := app.New(cfg)
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	var transfer *httpapi.TransferHandler
	if lt, ok := application.LocalTransfer(); ok {
		transfer = httpapi.NewTransferHandler(lt, cfg.Storage.AllowedTypes, cfg.Storage.MaxFileSize*1024*1024)
		logger.Info("Serving document uploads locally", "upload_dir", cfg.Storage.UploadDir)
	}

	router := httpapi.NewRouter(httpapi.Services{
		Vehicles:     application.Vehicles,
		Renters:      application.Renters,
		Reservations: application.Reservations,
		Documents:    application.Documents,
	}, transfer, cfg.RequestTimeout())

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout() + 30*time.Second,
		WriteTimeout:      cfg.RequestTimeout() + 30*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
