package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cardex/api"
	"cardex/config"
	"cardex/database"
	"cardex/events"
	"cardex/repository"
	"cardex/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log.SetLevel(level)
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	log.Info("Starting cardex...")

	log.Info("Running database migrations...")
	if err := database.MigrateUp(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	userService := service.NewUserService(uowFactory)
	cardService := service.NewCardService(uowFactory)
	inventoryService := service.NewInventoryService(uowFactory)
	matchingService := service.NewMatchingService(uowFactory)
	tradeService := service.NewTradeRequestService(uowFactory)
	sessionService := service.NewTradeSessionService(uowFactory)
	collectionService := service.NewCollectionService(uowFactory)

	server := api.NewServer(
		userService,
		cardService,
		inventoryService,
		matchingService,
		tradeService,
		sessionService,
		collectionService,
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"port":        cfg.HTTPPort,
			"environment": cfg.Environment,
		}).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}

	log.Info("Shutdown completed")
	return nil
}
