package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"rideshare-backend/config"
	"rideshare-backend/internal/api"
	"rideshare-backend/internal/db"
	"rideshare-backend/internal/events"
	"rideshare-backend/internal/logging"
	"rideshare-backend/internal/notification"
	"rideshare-backend/internal/ride"
	"rideshare-backend/internal/store"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{Development: cfg.Log.Development, Level: cfg.Log.Level})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Infow("configuration loaded", "path", configPath)

	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Warn("VAPID keys are not configured, push delivery will fail and be skipped")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
		Urgency:         webpush.Urgency(cfg.Push.Urgency),
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatalw("failed to initialize database", "error", err)
	}
	logger.Infow("database initialized", "driver", cfg.Database.Driver)

	appStore := store.NewGormStore(gormDB)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		amqpPublisher, err := events.DialAMQP(cfg.Events.URL, cfg.Events.Exchange)
		if err != nil {
			logger.Fatalw("failed to connect to event broker", "error", err)
		}
		publisher = amqpPublisher
		logger.Infow("publishing ride events", "exchange", cfg.Events.Exchange)
	}
	defer publisher.Close()

	gateway := notification.NewWebPushGateway(&webpushOptions, cfg.Push.Timeout)
	dispatcher := notification.NewDispatcher(appStore, appStore, gateway, cfg.Push.Concurrency, logger)
	manager := ride.NewManager(appStore, dispatcher, publisher, logger)

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(&cfg.Server, api.NewHandler(manager, appStore, &webpushOptions, logger))
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Infow("HTTP server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("HTTP server ListenAndServe", "error", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received, stopping server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("HTTP server Shutdown", "error", err)
		return
	}

	logger.Info("server gracefully stopped")
}
