package service

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Environment string
	Port        string
	BaseURL     string
	DBPath      string

	// Log.Format is "json" or "text". Text output is colored for terminals.
	Log struct {
		Level  slog.Level
		Format string
	}

	Backend struct {
		URL     string
		Timeout time.Duration
	}

	Payment struct {
		Provider        string
		StripeSecretKey string
	}

	Cart struct {
		GuestTTL      time.Duration
		PruneInterval time.Duration
		IdleEviction  time.Duration
	}

	HistoryLimit        int
	RecommendationLimit int
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8000"),
		DBPath:      getEnv("DB_PATH", "./db/storefront.db"),
	}

	var err error

	// Logging
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if err := config.Log.Level.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
		}
	}
	defaultFormat := "json"
	if config.Log.Level <= slog.LevelDebug {
		defaultFormat = "text"
	}
	config.Log.Format = getEnv("LOG_FORMAT", defaultFormat)
	if config.Log.Format != "json" && config.Log.Format != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: must be json or text", config.Log.Format)
	}

	// Backend
	config.Backend.URL = getEnv("BACKEND_API_URL", "http://localhost:5000")
	if config.Backend.Timeout, err = getDuration("BACKEND_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	// Payment
	config.Payment.Provider = getEnv("PAYMENT_PROVIDER", "backend")
	config.Payment.StripeSecretKey = getEnv("STRIPE_SECRET_KEY", "")
	if config.Payment.Provider != "backend" && config.Payment.Provider != "stripe" {
		return nil, fmt.Errorf("invalid PAYMENT_PROVIDER %q: must be backend or stripe", config.Payment.Provider)
	}
	if config.Payment.Provider == "stripe" && config.Payment.StripeSecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is required when PAYMENT_PROVIDER=stripe")
	}

	// Cart
	if config.Cart.GuestTTL, err = getDuration("GUEST_CART_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if config.Cart.PruneInterval, err = getDuration("CART_PRUNE_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if config.Cart.IdleEviction, err = getDuration("CART_IDLE_EVICTION", 30*time.Minute); err != nil {
		return nil, err
	}

	// Recommendations
	if config.HistoryLimit, err = getInt("HISTORY_LIMIT", 20); err != nil {
		return nil, err
	}
	if config.RecommendationLimit, err = getInt("RECOMMENDATION_LIMIT", 50); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, value)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, value)
	}
	return n, nil
}
