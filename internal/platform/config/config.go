package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Equity account receiving the year-end income/expense net.
	RetainedSurplusAccount string

	// Default date window (days) for automatic bank reconciliation matching.
	ReconciliationWindowDays int

	// Requests per minute per client IP.
	RateLimitPerMinute int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("RETAINED_SURPLUS_ACCOUNT", "39900")
	viper.SetDefault("RECON_WINDOW_DAYS", 7)
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 300)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.RetainedSurplusAccount = viper.GetString("RETAINED_SURPLUS_ACCOUNT")
	if cfg.RetainedSurplusAccount == "" {
		cfg.RetainedSurplusAccount = "39900"
		log.Printf("Warning: RETAINED_SURPLUS_ACCOUNT not set. Defaulting to %s.\n", cfg.RetainedSurplusAccount)
	}

	cfg.ReconciliationWindowDays = viper.GetInt("RECON_WINDOW_DAYS")
	if cfg.ReconciliationWindowDays <= 0 {
		cfg.ReconciliationWindowDays = 7
		log.Printf("Warning: Invalid RECON_WINDOW_DAYS. Defaulting to %d.\n", cfg.ReconciliationWindowDays)
	}

	cfg.RateLimitPerMinute = viper.GetInt("RATE_LIMIT_PER_MINUTE")
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 300
	}

	return cfg, nil
}
