package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'customer',
		api_key_hash TEXT NOT NULL,
		api_key_lookup TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image TEXT,
		price NUMERIC(12,2) NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0,
		in_stock BOOLEAN NOT NULL DEFAULT false,
		cj_product_id TEXT,
		cj_variant_id TEXT,
		cj_sku TEXT,
		cj_variants JSONB,
		cj_warehouse_id TEXT,
		cj_last_updated_at TIMESTAMPTZ,
		cj_last_update_type TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_cj_product_id ON products (cj_product_id) WHERE cj_product_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_products_cj_variant_id ON products (cj_variant_id) WHERE cj_variant_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_products_cj_sku ON products (cj_sku) WHERE cj_sku IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		status TEXT NOT NULL DEFAULT 'processing',
		payment_status TEXT NOT NULL DEFAULT 'pending',
		shipping_address JSONB NOT NULL DEFAULT '{}'::jsonb,
		total_minor BIGINT NOT NULL DEFAULT 0,
		checkout_session_id TEXT,
		fulfillment_order_id TEXT,
		fulfillment_order_number TEXT,
		fulfillment_error TEXT,
		tracking_number TEXT,
		tracking_carrier TEXT,
		shipped_at TIMESTAMPTZ,
		delivered_at TIMESTAMPTZ,
		estimated_delivery_at TIMESTAMPTZ,
		email_sent BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_checkout_session_id ON orders (checkout_session_id) WHERE checkout_session_id IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id),
		product_id UUID NOT NULL,
		name TEXT NOT NULL,
		unit_price NUMERIC(12,2) NOT NULL,
		quantity INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id)`,

	`CREATE TABLE IF NOT EXISTS password_resets (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		token_hash TEXT NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		used BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS cached_tokens (
		service TEXT PRIMARY KEY,
		access_token TEXT NOT NULL,
		access_token_expiry TIMESTAMPTZ NOT NULL,
		refresh_token TEXT NOT NULL DEFAULT '',
		refresh_token_expiry TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

func main() {
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "storeapi")
	dbSSLMode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPassword, dbHost, dbPort, dbName, dbSSLMode)

	if dsnEnv := os.Getenv("DATABASE_URL"); dsnEnv != "" {
		dsn = dsnEnv
	}

	// Connect to the postgres database first to create the target database if needed
	postgresDSN := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=%s",
		dbUser, dbPassword, dbHost, dbPort, dbSSLMode)

	postgresDB, err := sql.Open("postgres", postgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to postgres database: %v\n", err)
		os.Exit(1)
	}
	defer postgresDB.Close()

	var exists bool
	err = postgresDB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", dbName,
	).Scan(&exists)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to check database existence: %v\n", err)
		os.Exit(1)
	}

	if !exists {
		fmt.Printf("Database '%s' does not exist. Creating...\n", dbName)
		if _, err = postgresDB.Exec(fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create database: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Database '%s' created successfully.\n", dbName)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	for i, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			fmt.Fprintf(os.Stderr, "Migration statement %d failed: %v\n", i+1, err)
			os.Exit(1)
		}
	}

	fmt.Println("Migrations applied successfully.")
}

func getEnv(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}
