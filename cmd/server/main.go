package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hauldesk/hauldesk/config"
	"github.com/hauldesk/hauldesk/internal/api"
	"github.com/hauldesk/hauldesk/internal/api/handlers"
	"github.com/hauldesk/hauldesk/internal/core/auth"
	"github.com/hauldesk/hauldesk/internal/core/lookup"
	"github.com/hauldesk/hauldesk/internal/core/summary"
	"github.com/hauldesk/hauldesk/internal/registry"
	"github.com/hauldesk/hauldesk/internal/storage/postgres"
	"github.com/hauldesk/hauldesk/internal/storage/rediscache"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Validate critical configuration
	if cfg.JWT.Secret == "" {
		log.Fatalf("JWT_SECRET environment variable is required")
	}

	// Connect to database
	db, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database")

	// Redis is optional; a nil cache just never hits
	cache := rediscache.New(&cfg.Redis)
	if cache != nil {
		log.Println("Connected to redis")
	}
	defer cache.Close()

	// Initialize services
	authRepo := auth.NewRepository(db)
	authService := auth.NewService(authRepo, &cfg.JWT)

	reg, err := registry.New(db)
	if err != nil {
		log.Fatalf("Failed to build collection registry: %v", err)
	}

	fetcher := lookup.NewFetcher(db, cache)
	summaryService := summary.NewService(db, cache)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	formHandler := handlers.NewFormHandler(reg)
	recordHandler := handlers.NewRecordHandler(reg)
	lookupHandler := handlers.NewLookupHandler(reg, fetcher)
	summaryHandler := handlers.NewSummaryHandler(reg, summaryService)

	// Setup router
	router := api.NewRouter(
		authService,
		authHandler,
		formHandler,
		recordHandler,
		lookupHandler,
		summaryHandler,
	)

	engine := router.Setup(cfg.Server.Mode)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		cache.Close()
		db.Close()
		os.Exit(0)
	}()

	// Start server
	log.Printf("Starting server on port %s", cfg.Server.Port)
	if err := engine.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
