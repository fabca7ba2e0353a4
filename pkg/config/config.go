package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	Environment     string
	FirebaseProject string
	FirebaseApiKey  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StripeSecretKey     string
	StripeWebhookSecret string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	// Identities promoted to admin on sight. Comma-separated emails or
	// provider UIDs.
	AdminAllowlist []string

	// Prices in minor currency units.
	AdPostingPrice int64
	AdBoostPrice   int64
	Currency       string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:  getEnv("FIREBASE_API_KEY", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       int(getEnvAsInt64("REDIS_DB", 0)),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		CheckoutSuccessURL:  getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/payment-success"),
		CheckoutCancelURL:   getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/payment-cancelled"),

		AdminAllowlist: getEnvAsList("ADMIN_ALLOWLIST", ""),

		AdPostingPrice: getEnvAsInt64("AD_POSTING_PRICE", 200),
		AdBoostPrice:   getEnvAsInt64("AD_BOOST_PRICE", 100),
		Currency:       getEnv("CURRENCY", "usd"),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
