package config

import (
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field maps 1:1 to an env var; cmd/cmed binds its flags onto the same keys.
type Config struct {
	// Server
	Port     int    `mapstructure:"PORT"`
	Env      string `mapstructure:"APP_ENV"` // development | production
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Database. DATABASE_URL wins over the discrete DB_* keys.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBHost      string `mapstructure:"DB_HOST"`
	DBPort      int    `mapstructure:"DB_PORT"`
	DBName      string `mapstructure:"DB_NAME"`
	DBUser      string `mapstructure:"DB_USER"`
	DBPassword  string `mapstructure:"DB_PASSWORD"`
	DBSSLMode   string `mapstructure:"DB_SSLMODE"`

	// Redis (empty disables the search cache)
	RedisURL        string `mapstructure:"REDIS_URL"`
	CacheTTLSeconds int    `mapstructure:"CACHE_TTL"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	// Import
	ImportCSV          string `mapstructure:"IMPORT_CSV"`
	ImportSkip         int    `mapstructure:"IMPORT_SKIP"`
	ImportMinColumns   int    `mapstructure:"IMPORT_MIN_COLUMNS"`
	ImportCommitEvery  int    `mapstructure:"IMPORT_COMMIT_EVERY"`
	ImportEncoding     string `mapstructure:"IMPORT_ENCODING"`
	ImportAuditHistory bool   `mapstructure:"IMPORT_AUDIT_HISTORY"`
	ImportUser         string `mapstructure:"IMPORT_USER"`

	// Business
	PriceVariationAlertPct float64 `mapstructure:"PRICE_VARIATION_ALERT_PCT"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_NAME", "cmed")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CACHE_TTL", 300)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_EXPIRATION_HOURS", 8)
	viper.SetDefault("IMPORT_CSV", "TA_PRECO_MEDICAMENTO.csv")
	viper.SetDefault("IMPORT_SKIP", 72)
	viper.SetDefault("IMPORT_MIN_COLUMNS", 10)
	viper.SetDefault("IMPORT_COMMIT_EVERY", 100)
	viper.SetDefault("IMPORT_ENCODING", "utf-8")
	viper.SetDefault("IMPORT_AUDIT_HISTORY", false)
	viper.SetDefault("IMPORT_USER", "importacao")
	viper.SetDefault("PRICE_VARIATION_ALERT_PCT", 50)

	// Optional .env file for local development — does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN returns the Postgres connection string: DATABASE_URL when set, otherwise one
// assembled from the DB_* keys.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", c.DBSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// LimiteVariacao is the PF variation (percent) above which a price update raises an advisory.
func (c *Config) LimiteVariacao() decimal.Decimal {
	return decimal.NewFromFloat(c.PriceVariationAlertPct)
}
