// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the service configuration.
type Config struct {
	// HTTP
	Port int

	// Storage
	DatabaseURL string
	RedisAddr   string // optional; empty selects the in-memory cache

	// Object storage for uploaded material files. Optional; empty disables
	// file uploads (materials arrive as text).
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	// Model providers, tried in order: OpenAI-compatible endpoint first,
	// Gemini second.
	OpenAIKey     string
	OpenAIBaseURL string // optional override (e.g. a Groq endpoint)
	OpenAIModel   string
	GeminiKey     string
	GeminiModel   string

	// Fetching
	UseBrowser bool
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           8080,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    getenvDefault("MINIO_BUCKET", "materials"),
		MinIOUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:    getenvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getenvDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		UseBrowser:     os.Getenv("USE_BROWSER") == "true",
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %v", err)
		}
		cfg.Port = port
	}

	return cfg, nil
}

// Validate checks the values a full server deployment requires. Load does
// not call it: one-shot CLI commands need the provider keys but not the
// database, so each entry point validates what it uses.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port out of range: %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.OpenAIKey == "" && c.GeminiKey == "" {
		return fmt.Errorf("config error: at least one of OPENAI_API_KEY or GEMINI_API_KEY is required")
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
