package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ShopifyStoreDomain   string
	ShopifyAccessToken   string
	ShopifyAPIVersion    string
	ShopifyWebhookSecret string
	SanityProjectID      string
	SanityDataset        string
	SanityAPIVersion     string
	SanityWebhookSecret  string
	RevalidateSecret     string
	ShopEnabled          bool
	RedisAddr            string
	ServerPort           string
	Environment          string
}

var AppConfig *Config

func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// .env file is optional, continue without it
	}

	AppConfig = &Config{
		ShopifyStoreDomain:   getEnv("SHOPIFY_STORE_DOMAIN", ""),
		ShopifyAccessToken:   getEnv("SHOPIFY_STOREFRONT_ACCESS_TOKEN", ""),
		ShopifyAPIVersion:    getEnv("SHOPIFY_API_VERSION", "2024-01"),
		ShopifyWebhookSecret: getEnv("SHOPIFY_WEBHOOK_SECRET", ""),
		SanityProjectID:      getEnv("SANITY_PROJECT_ID", ""),
		SanityDataset:        getEnv("SANITY_DATASET", "production"),
		SanityAPIVersion:     getEnv("SANITY_API_VERSION", "2024-01-01"),
		SanityWebhookSecret:  getEnv("SANITY_WEBHOOK_SECRET", ""),
		RevalidateSecret:     getEnv("REVALIDATE_SECRET", ""),
		// The deploy environment shares the storefront's public flag name;
		// the server-side name wins when both are set.
		ShopEnabled:          getEnv("SHOP_ENABLED", getEnv("NEXT_PUBLIC_SHOP_ENABLED", "true")) == "true",
		RedisAddr:            getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		ServerPort:           getEnv("PORT", "8080"),
		Environment:          getEnv("ENVIRONMENT", "development"),
	}

	return nil
}

// IsProduction reports whether the server runs with production settings.
// Cookie security flags and gin's release mode key off this.
func IsProduction() bool {
	return AppConfig != nil && AppConfig.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
