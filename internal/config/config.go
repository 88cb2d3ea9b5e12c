package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config is the process configuration, read once at startup.
type Config struct {
	DatabaseURL    string
	ServerPort     string
	AllowedOrigins string
	JWTSecret      string
	LogMode        string
	TaxRate        decimal.Decimal
	MinStockRatio  decimal.Decimal
	TokenTTL       time.Duration
}

// Load reads .env (if present) and then the environment. The server needs a
// JWT secret; the CLI and migrator pass requireSecret=false.
func Load(requireSecret bool) (*Config, error) {
	_ = godotenv.Load()
	return fromEnv(os.Getenv, requireSecret)
}

func fromEnv(getenv func(string) string, requireSecret bool) (*Config, error) {
	cfg := &Config{
		DatabaseURL:    getenv("DATABASE_URL"),
		ServerPort:     orDefault(getenv("SERVER_PORT"), "8080"),
		AllowedOrigins: getenv("ALLOWED_ORIGINS"),
		JWTSecret:      getenv("JWT_SECRET"),
		LogMode:        orDefault(getenv("LOG_MODE"), "dev"),
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if requireSecret && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	var err error
	if cfg.TaxRate, err = decimalVar(getenv, "TAX_RATE", "0.18"); err != nil {
		return nil, err
	}
	if cfg.MinStockRatio, err = decimalVar(getenv, "MIN_STOCK_RATIO", "0.3"); err != nil {
		return nil, err
	}
	if cfg.TaxRate.IsNegative() {
		return nil, fmt.Errorf("TAX_RATE cannot be negative")
	}
	if !cfg.MinStockRatio.IsPositive() {
		return nil, fmt.Errorf("MIN_STOCK_RATIO must be positive")
	}

	ttl := orDefault(getenv("TOKEN_TTL"), "1h")
	cfg.TokenTTL, err = time.ParseDuration(ttl)
	if err != nil {
		return nil, fmt.Errorf("TOKEN_TTL %q: %w", ttl, err)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive")
	}
	return cfg, nil
}

func decimalVar(getenv func(string) string, key, def string) (decimal.Decimal, error) {
	raw := orDefault(getenv(key), def)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q is not a number: %w", key, raw, err)
	}
	return d, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
