package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/zahrastore/storeapi/internal/api/middleware"
	"github.com/zahrastore/storeapi/internal/config"
	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/internal/repository/postgres"
)

func main() {
	emailFlag := flag.String("email", "", "Admin email address")
	nameFlag := flag.String("name", "", "Admin display name")
	apiKeyFlag := flag.String("api-key", "", "API key for this admin (save it; it cannot be retrieved later)")
	passwordFlag := flag.String("password", "", "Initial password")
	flag.Parse()

	email := strings.TrimSpace(*emailFlag)
	name := strings.TrimSpace(*nameFlag)
	apiKey := strings.TrimSpace(*apiKeyFlag)
	password := *passwordFlag

	if email == "" || apiKey == "" {
		fmt.Println("Usage:")
		fmt.Println("  go run cmd/create-admin/main.go --email admin@example.com --name \"Store Admin\" --api-key \"your-api-key\" [--password \"secret\"]")
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)

	apiKeyHash, err := middleware.HashAPIKey(apiKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash API key: %v\n", err)
		os.Exit(1)
	}

	var passwordHash string
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
			os.Exit(1)
		}
		passwordHash = string(hash)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		Role:         domain.RoleAdmin,
		APIKeyHash:   apiKeyHash,
		APIKeyLookup: middleware.LookupHash(apiKey),
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := repos.User.Create(ctx, user); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create admin user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Admin user created.\n  id:    %s\n  email: %s\n", user.ID, user.Email)
	fmt.Println("Store the API key somewhere safe; only its hash is persisted.")
}
