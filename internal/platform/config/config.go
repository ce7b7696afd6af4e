package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// SeedDefaultAccounts creates the default chart of accounts on startup
	// when the registry is empty.
	SeedDefaultAccounts bool

	// RateLimit uses the limiter format, e.g. "100-M" for 100 requests/minute.
	RateLimit string

	// PosthogAPIKey enables the analytics event sink when set.
	PosthogAPIKey string

	// AttachmentDir is where the filesystem attachment adapter stores files.
	AttachmentDir string

	// ReceivableAccount and RevenueAccount form the invoice posting mapping:
	// debit receivable, credit revenue, both for the invoice total.
	ReceivableAccount string
	RevenueAccount    string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("SEED_DEFAULT_ACCOUNTS", false)
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("ATTACHMENT_DIR", "attachments")
	viper.SetDefault("RECEIVABLE_ACCOUNT", "1100")
	viper.SetDefault("REVENUE_ACCOUNT", "4000")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:         viper.GetString("PGSQL_URL"),
		Port:                viper.GetString("PORT"),
		IsProduction:        viper.GetBool("IS_PRODUCTION"),
		SeedDefaultAccounts: viper.GetBool("SEED_DEFAULT_ACCOUNTS"),
		RateLimit:           viper.GetString("RATE_LIMIT"),
		PosthogAPIKey:       viper.GetString("POSTHOG_API_KEY"),
		AttachmentDir:       viper.GetString("ATTACHMENT_DIR"),
		ReceivableAccount:   viper.GetString("RECEIVABLE_ACCOUNT"),
		RevenueAccount:      viper.GetString("REVENUE_ACCOUNT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	return cfg, nil
}
