/**
 * @description
 * This is the main entry point for the Horizon API server. Its
 * responsibility is to initialize all components and start the HTTP server.
 *
 * Key features:
 * - Loads application configuration from environment variables.
 * - Constructs the document-store handle shared by all repositories.
 * - Initializes clients for external services (identity provider,
 *   aggregation provider, payments processor).
 * - Wires up the core services with their dependencies and implements
 *   graceful shutdown.
 *
 * @dependencies
 * - The service's internal packages for config, app logic, storage, and
 *   external clients.
 * - godotenv for local config.
 */
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/horizonbank/horizon-api/internal/api"
	"github.com/horizonbank/horizon-api/internal/app"
	"github.com/horizonbank/horizon-api/internal/config"
	"github.com/horizonbank/horizon-api/internal/domain"
	"github.com/horizonbank/horizon-api/internal/store"
	"github.com/horizonbank/horizon-api/pkg/authclient"
	"github.com/horizonbank/horizon-api/pkg/dwollaclient"
	"github.com/horizonbank/horizon-api/pkg/plaidclient"
	"github.com/horizonbank/horizon-api/pkg/rabbitmq"
)

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	// The store handle connects lazily on first use; repositories share it.
	db := store.NewStore(cfg.MongoURI, cfg.MongoDatabase)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			log.Printf("Error closing document store: %v", err)
		}
	}()

	userRepo := store.NewMongoUserRepository(db)
	bankRepo := store.NewMongoBankRepository(db)
	sessionRepo := store.NewMongoSessionRepository(db)
	transactionRepo := store.NewMongoTransactionRepository(db)

	identityClient := authclient.NewClient(cfg.AuthServiceURL)
	plaidClient := plaidclient.NewClient(cfg.PlaidBaseURL, cfg.PlaidClientID, cfg.PlaidSecret)
	dwollaClient := dwollaclient.NewClient(cfg.DwollaBaseURL, cfg.DwollaAPIKey)

	codec, err := domain.NewShareableIDCodec(cfg.ShareableIDSecret)
	if err != nil {
		log.Fatalf("cannot initialize shareable-id codec: %v", err)
	}

	var events rabbitmq.Publisher = rabbitmq.NoopProducer{}
	if cfg.RabbitMQURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("RabbitMQ unavailable, falling back to log-only events: %v", err)
		} else {
			events = producer
		}
	}
	defer events.Close()

	authService := app.NewAuthService(identityClient, dwollaClient, userRepo, sessionRepo)
	linkingService := app.NewLinkingService(plaidClient, dwollaClient, bankRepo, codec, events)
	accountService := app.NewAccountService(plaidClient, bankRepo, transactionRepo)
	transferService := app.NewTransferService(dwollaClient, bankRepo, transactionRepo, events)

	router := api.NewRouter(cfg, api.Handlers{
		Auth:         api.NewAuthHandler(authService, cfg.SessionCookieName, cfg.SessionCookieSecure),
		Link:         api.NewLinkHandler(linkingService),
		Banks:        api.NewBankHandler(bankRepo, accountService),
		Transactions: api.NewTransactionHandler(transferService),
		Sessions:     authService,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	// Wait for termination signal for graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
