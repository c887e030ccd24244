package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadConfig builds the configuration from defaults and overrides provided
// via environment variables. A .env file in the working directory is
// loaded first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	config := defaultConfig()

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func loadFromEnv(config *Config) error {
	if err := loadServerConfig(&config.Server); err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}

	config.Canvas.BaseURL = getEnv("CANVAS_BASE_URL", config.Canvas.BaseURL)

	config.Groq.APIKey = getEnv("GROQ_API_KEY", config.Groq.APIKey)
	config.Groq.BaseURL = getEnv("GROQ_BASE_URL", config.Groq.BaseURL)
	config.Groq.Model = getEnv("GROQ_MODEL", config.Groq.Model)

	config.Database.URL = getEnv("DATABASE_URL", config.Database.URL)

	if err := loadFetchConfig(&config.Fetch); err != nil {
		return fmt.Errorf("failed to load fetch config: %w", err)
	}

	config.Logging.Level = getEnv("LOG_LEVEL", config.Logging.Level)
	config.Logging.ServiceName = getEnv("SERVICE_NAME", config.Logging.ServiceName)

	return nil
}

func loadServerConfig(cfg *ServerConfig) error {
	var err error

	if cfg.Port, err = parseIntEnv("SERVER_PORT", cfg.Port); err != nil {
		return err
	}

	if cfg.ShutdownTimeout, err = parseDurationEnv("SERVER_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return err
	}

	if cfg.ReadTimeout, err = parseDurationEnv("SERVER_READ_TIMEOUT", cfg.ReadTimeout); err != nil {
		return err
	}

	if cfg.WriteTimeout, err = parseDurationEnv("SERVER_WRITE_TIMEOUT", cfg.WriteTimeout); err != nil {
		return err
	}

	return nil
}

func loadFetchConfig(cfg *FetchConfig) error {
	var err error

	if cfg.RequestsPerSecond, err = parseFloatEnv("FETCH_REQUESTS_PER_SECOND", cfg.RequestsPerSecond); err != nil {
		return err
	}

	if cfg.Burst, err = parseIntEnv("FETCH_BURST", cfg.Burst); err != nil {
		return err
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func parseFloatEnv(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
