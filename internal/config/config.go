package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Stripe      StripeConfig
	CJ          CJConfig
	SMTP        SMTPConfig
	Checkout    CheckoutConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// StripeConfig configures the payment-session provider.
type StripeConfig struct {
	SecretKey string
}

// CJConfig configures the dropship fulfillment provider client.
type CJConfig struct {
	BaseURL      string  // e.g. https://developers.cjdropshipping.com/api2.0/v1
	Email        string  // account email for authentication
	APIKey       string  // CJ_API_KEY
	PriceMarkup  float64 // multiplier applied to provider sell price on product webhooks
	ShipmentType string  // default shipment type for created orders
}

// SMTPConfig configures outbound transactional email.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// CheckoutConfig carries the redirect targets for payment sessions.
type CheckoutConfig struct {
	SuccessURL string
	CancelURL  string
	Currency   string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CJ_PRICE_MARKUP", "1.3")
	viper.SetDefault("CJ_SHIPMENT_TYPE", "CJPacket")
	viper.SetDefault("CHECKOUT_CURRENCY", "usd")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	markup, err := strconv.ParseFloat(getEnvOrViper("CJ_PRICE_MARKUP", "1.3"), 64)
	if err != nil || markup <= 0 {
		return nil, fmt.Errorf("CJ_PRICE_MARKUP must be a positive number")
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "storeapi"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Stripe: StripeConfig{
			SecretKey: strings.TrimSpace(getEnvOrViper("STRIPE_SECRET_KEY", "")),
		},
		CJ: CJConfig{
			BaseURL:      strings.TrimSuffix(strings.TrimSpace(getEnvOrViper("CJ_BASE_URL", "https://developers.cjdropshipping.com/api2.0/v1")), "/"),
			Email:        strings.TrimSpace(getEnvOrViper("CJ_EMAIL", "")),
			APIKey:       strings.TrimSpace(getEnvOrViper("CJ_API_KEY", "")),
			PriceMarkup:  markup,
			ShipmentType: getEnvOrViper("CJ_SHIPMENT_TYPE", "CJPacket"),
		},
		SMTP: SMTPConfig{
			Host:     strings.TrimSpace(getEnvOrViper("SMTP_HOST", "")),
			Port:     getEnvOrViper("SMTP_PORT", "587"),
			Username: getEnvOrViper("SMTP_USERNAME", ""),
			Password: getEnvOrViper("SMTP_PASSWORD", ""),
			From:     getEnvOrViper("SMTP_FROM", "no-reply@zahrastore.com"),
		},
		Checkout: CheckoutConfig{
			SuccessURL: strings.TrimSpace(getEnvOrViper("CHECKOUT_SUCCESS_URL", "")),
			CancelURL:  strings.TrimSpace(getEnvOrViper("CHECKOUT_CANCEL_URL", "")),
			Currency:   getEnvOrViper("CHECKOUT_CURRENCY", "usd"),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if cfg.Stripe.SecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if cfg.CJ.Email == "" || cfg.CJ.APIKey == "" {
		return nil, fmt.Errorf("CJ_EMAIL and CJ_API_KEY are required")
	}
	if cfg.Checkout.SuccessURL == "" || cfg.Checkout.CancelURL == "" {
		return nil, fmt.Errorf("CHECKOUT_SUCCESS_URL and CHECKOUT_CANCEL_URL are required")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
