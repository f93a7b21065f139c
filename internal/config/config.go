package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	NATS    NATSConfig
	Mongo   MongoConfig
	Service ServiceConfig
}

type NATSConfig struct {
	URL        string
	QueueGroup string
}

type MongoConfig struct {
	// URI may be empty, in which case the service runs on the in-memory
	// store.
	URI string
	DB  string
}

type ServiceConfig struct {
	// RequestTimeout bounds every call to the catalog and payment services.
	RequestTimeout  time.Duration
	DefaultCurrency string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	requestTimeout, err := getDurationEnv("REQUEST_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Config{
		NATS: NATSConfig{
			URL:        getEnv("NATS_URL", "nats://localhost:4222"),
			QueueGroup: getEnv("QUEUE_GROUP", "orders"),
		},
		Mongo: MongoConfig{
			URI: getEnv("MONGO_URI", ""),
			DB:  getEnv("MONGO_DB", "orderdb"),
		},
		Service: ServiceConfig{
			RequestTimeout:  requestTimeout,
			DefaultCurrency: getEnv("DEFAULT_CURRENCY", "usd"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required")
	}
	if c.NATS.QueueGroup == "" {
		return fmt.Errorf("QUEUE_GROUP is required")
	}
	if c.Mongo.URI != "" && c.Mongo.DB == "" {
		return fmt.Errorf("MONGO_DB is required when MONGO_URI is set")
	}
	if c.Service.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.Service.DefaultCurrency == "" {
		return fmt.Errorf("DEFAULT_CURRENCY is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
