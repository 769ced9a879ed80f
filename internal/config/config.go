// Package config reads the storefront settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/food_cart/internal/identity"
	"github.com/fjod/food_cart/internal/pricing"
)

const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

type Config struct {
	HTTPPort        string
	GRPCPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string

	CatalogDBPath         string
	CatalogMigrationsPath string

	CartStore     string
	CartIdleTTL   time.Duration
	MongoURI      string
	MongoDBName   string
	RedisAddr     string
	RedisPassword string

	UserStore string
	Postgres  identity.Credentials

	KafkaBrokers []string
	OrdersTopic  string

	TaxRate     float64
	TaxIncluded bool
	Currency    string
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		GRPCPort: getEnv("GRPC_PORT", "50051"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CatalogDBPath:         getEnv("CATALOG_DB_PATH", "./data/catalog.db"),
		CatalogMigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "./internal/catalog/migrations"),

		CartStore:     getEnv("CART_STORE", StoreMemory),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:   getEnv("MONGO_DB_NAME", "food_cart"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		UserStore: getEnv("USER_STORE", StoreMemory),
		Postgres: identity.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "food_cart"),
			MigrationsDirPath: getEnv("USERS_MIGRATIONS_PATH", "./internal/identity/migrations"),
		},

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		OrdersTopic:  getEnv("ORDERS_TOPIC", "orders.placed"),

		Currency: getEnv("CURRENCY", "USD"),
	}

	var err error
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	// Zero keeps in-memory carts for the lifetime of the process.
	if cfg.CartIdleTTL, err = getDuration("CART_IDLE_TTL", 0); err != nil {
		return nil, err
	}
	if cfg.Postgres.Port, err = strconv.Atoi(getEnv("DB_PORT", "5432")); err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	if cfg.TaxRate, err = getFloat("TAX_RATE", 0.085); err != nil {
		return nil, err
	}
	if cfg.TaxIncluded, err = getBool("TAX_INCLUDED_IN_MENU_PRICES", true); err != nil {
		return nil, err
	}

	if cfg.CartStore != StoreMemory && cfg.CartStore != StoreMongo {
		return nil, fmt.Errorf("CART_STORE must be %q or %q, got %q", StoreMemory, StoreMongo, cfg.CartStore)
	}
	if cfg.UserStore != StoreMemory && cfg.UserStore != StorePostgres {
		return nil, fmt.Errorf("USER_STORE must be %q or %q, got %q", StoreMemory, StorePostgres, cfg.UserStore)
	}
	if cfg.CartIdleTTL < 0 {
		return nil, fmt.Errorf("CART_IDLE_TTL must not be negative, got %s", cfg.CartIdleTTL)
	}
	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return nil, fmt.Errorf("TAX_RATE must be in [0, 1), got %v", cfg.TaxRate)
	}

	return cfg, nil
}

// PricingRules overlays the configured tax and currency on the default rules.
func (c *Config) PricingRules() pricing.Rules {
	rules := pricing.DefaultRules()
	rules.TaxRate = c.TaxRate
	rules.TaxIncluded = c.TaxIncluded
	rules.Currency = c.Currency
	return rules
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
