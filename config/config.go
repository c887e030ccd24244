// Package config builds service configuration from defaults overridden by
// environment variables. A .env file is honored in development.
package config

import "time"

// Config aggregates all service configuration blocks.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Canvas   CanvasConfig   `json:"canvas"`
	Groq     GroqConfig     `json:"groq"`
	Database DatabaseConfig `json:"database"`
	Fetch    FetchConfig    `json:"fetch"`
	Logging  LoggingConfig  `json:"logging"`
}

type ServerConfig struct {
	Port            int           `json:"port" env:"SERVER_PORT" validate:"gte=1,lte=65535"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" validate:"gt=0"`
	ReadTimeout     time.Duration `json:"read_timeout" env:"SERVER_READ_TIMEOUT" validate:"gt=0"`
	// Corpus aggregation plus LLM generation can take a while.
	WriteTimeout time.Duration `json:"write_timeout" env:"SERVER_WRITE_TIMEOUT" validate:"gt=0"`
}

type CanvasConfig struct {
	BaseURL string `json:"base_url" env:"CANVAS_BASE_URL" validate:"required,url"`
}

type GroqConfig struct {
	APIKey  string `json:"-" env:"GROQ_API_KEY" validate:"required"`
	BaseURL string `json:"base_url" env:"GROQ_BASE_URL" validate:"required,url"`
	Model   string `json:"model" env:"GROQ_MODEL" validate:"required"`
}

type DatabaseConfig struct {
	URL string `json:"-" env:"DATABASE_URL" validate:"required"`
}

// FetchConfig tunes the third-party URL fetcher.
type FetchConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second" env:"FETCH_REQUESTS_PER_SECOND" validate:"gt=0"`
	Burst             int     `json:"burst" env:"FETCH_BURST" validate:"gt=0"`
}

type LoggingConfig struct {
	Level       string `json:"level" env:"LOG_LEVEL"`
	ServiceName string `json:"service_name" env:"SERVICE_NAME" validate:"required"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            9300,
			ShutdownTimeout: 30 * time.Second,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    300 * time.Second,
		},
		Canvas: CanvasConfig{
			BaseURL: "https://canvas.instructure.com",
		},
		Groq: GroqConfig{
			BaseURL: "https://api.groq.com/openai/v1",
			Model:   "llama-3.3-70b-versatile",
		},
		Fetch: FetchConfig{
			RequestsPerSecond: 4,
			Burst:             8,
		},
		Logging: LoggingConfig{
			Level:       "info",
			ServiceName: "cognify",
		},
	}
}
