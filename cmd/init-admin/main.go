package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hauldesk/hauldesk/config"
	"github.com/hauldesk/hauldesk/internal/core/auth"
	"github.com/hauldesk/hauldesk/internal/storage/postgres"
)

// Seeds the first account so a fresh deployment can log in without an open
// registration round-trip.
func main() {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD environment variables are required")
	}

	cfg := config.Load()

	db, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	authRepo := auth.NewRepository(db)

	existing, err := authRepo.GetUserByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("Failed to check for existing user: %v", err)
	}
	if existing != nil {
		fmt.Printf("User '%s' already exists\n", adminEmail)
		os.Exit(0)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := &auth.User{
		ID:           uuid.New(),
		Email:        adminEmail,
		PasswordHash: string(hash),
		Name:         "Admin",
		Status:       "active",
	}

	if err := authRepo.CreateUser(ctx, user); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	fmt.Printf("Successfully created admin user: %s\n", adminEmail)
}
