package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string

	// Rate limiting (ulule/limiter formatted rate, e.g. "100-M")
	RateLimit string

	// Permission resolver read-through cache
	PermissionCacheEnabled bool
	PermissionCacheSize    int
	PermissionCacheTTL     time.Duration

	// Migration engine tunables
	MigrationConcurrency int
	MigrationMaxRetries  uint64
	MigrationRetryBase   time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("PERMISSION_CACHE_ENABLED", true)
	viper.SetDefault("PERMISSION_CACHE_SIZE", 1024)
	viper.SetDefault("PERMISSION_CACHE_TTL", "30s")
	viper.SetDefault("MIGRATION_CONCURRENCY", 4)
	viper.SetDefault("MIGRATION_MAX_RETRIES", 3)
	viper.SetDefault("MIGRATION_RETRY_BASE", "100ms")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	cfg.PermissionCacheEnabled = viper.GetBool("PERMISSION_CACHE_ENABLED")
	cfg.PermissionCacheSize = viper.GetInt("PERMISSION_CACHE_SIZE")
	cacheTTLStr := viper.GetString("PERMISSION_CACHE_TTL")
	cacheTTL, err := time.ParseDuration(cacheTTLStr)
	if err != nil {
		cacheTTL = 30 * time.Second
		log.Printf("Warning: Invalid value for PERMISSION_CACHE_TTL ('%s'). Defaulting to %s.\n", cacheTTLStr, cacheTTL.String())
	}
	cfg.PermissionCacheTTL = cacheTTL

	cfg.MigrationConcurrency = viper.GetInt("MIGRATION_CONCURRENCY")
	cfg.MigrationMaxRetries = viper.GetUint64("MIGRATION_MAX_RETRIES")
	retryBaseStr := viper.GetString("MIGRATION_RETRY_BASE")
	retryBase, err := time.ParseDuration(retryBaseStr)
	if err != nil {
		retryBase = 100 * time.Millisecond
		log.Printf("Warning: Invalid value for MIGRATION_RETRY_BASE ('%s'). Defaulting to %s.\n", retryBaseStr, retryBase.String())
	}
	cfg.MigrationRetryBase = retryBase

	return cfg, nil
}
