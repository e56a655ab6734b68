package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/gym-portal/internal/api"
	"alcyxob/gym-portal/internal/assistant"
	"alcyxob/gym-portal/internal/config"
	"alcyxob/gym-portal/internal/mailer"
	"alcyxob/gym-portal/internal/payments"
	"alcyxob/gym-portal/internal/repository/mongo"
	"alcyxob/gym-portal/internal/service"
	"alcyxob/gym-portal/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title Gym Portal API
// @version 1.0
// @description Memberships, group classes, PT bookings and plan requests for a gym.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Gym Portal Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: Invalid configuration: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	// Booking uniqueness depends on these, so they are created before serving.
	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 1*time.Minute)
	if err := mongo.EnsureIndexes(indexCtx, appDB); err != nil {
		cancelIndexes()
		log.Fatalf("FATAL: Could not create indexes: %v", err)
	}
	cancelIndexes()

	// --- Optional collaborators ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		log.Println("Initializing file storage service...")
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
		}
	}
	sender, err := mailer.New(cfg.Email)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize mailer: %v", err)
	}
	var completer assistant.Completer
	if cfg.AI.APIKey != "" {
		completer = assistant.NewOpenAIClient(cfg.AI)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	classRepo := mongo.NewMongoClassRepository(appDB)
	planRequestRepo := mongo.NewMongoPlanRequestRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	services := api.Services{
		Auth:        service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration),
		Users:       service.NewUserService(userRepo),
		Bookings:    service.NewBookingService(userRepo, sessionRepo, cfg.Booking.MaxRangeDays),
		Classes:     service.NewClassService(userRepo, classRepo),
		PlanRequest: service.NewPlanRequestService(userRepo, planRequestRepo, sender, fileStorage),
		Ledger:      service.NewLedgerService(userRepo, cfg.Payments.Catalog()),
		Dashboard:   service.NewDashboardService(userRepo, sessionRepo, classRepo, planRequestRepo),
		Assistant:   service.NewAssistantService(completer, cfg.AI.SystemPrompt, cfg.AI.HistoryLimit),
		Webhooks:    payments.NewVerifier(cfg.Payments.WebhookSecret, cfg.Payments.AllowUnsignedWebhooks),
	}

	// --- Initialize Gin Engine ---
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.Default() // Includes Logger and Recovery middleware

	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, services)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // plan emails and assistant replies call out to providers
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
