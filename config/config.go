// Package config loads the editor's runtime configuration from the
// environment, with .env support for local development.
package config

import (
	"errors"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration. Supabase and the
// processing service are required; everything else has a default.
type Config struct {
	Port             string
	SupabaseURL      string // Supabase project URL
	SupabaseKey      string // anon or service key for storage and the videos table
	StorageBucket    string // bucket for track uploads and custom assets
	ProcessingAPIURL string // base URL of the external processing service
	RedisAddr        string // empty disables the video cache
	RedisPassword    string
	RedisDB          int
	SpoolDir         string // base dir for per-session track spools; empty uses the system temp dir
	LogLevel         string
	LogFile          string // empty logs to stdout only
	AllowedOrigins   string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or
// defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	return &Config{
		Port:             getEnv("PORT", "4000"),
		SupabaseURL:      os.Getenv("SUPABASE_URL"),
		SupabaseKey:      os.Getenv("SUPABASE_ANON_KEY"),
		StorageBucket:    getEnv("STORAGE_BUCKET", "videos"),
		ProcessingAPIURL: os.Getenv("PROCESSING_API_URL"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		SpoolDir:         getEnv("SPOOL_DIR", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          getEnv("LOG_FILE", ""),
		AllowedOrigins:   getEnv("ALLOWED_ORIGINS", "*"),
	}
}

// Validate reports missing required settings. Missing credentials are a
// startup error, never a runtime retry condition.
func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return errors.New("SUPABASE_URL is required")
	}
	if c.SupabaseKey == "" {
		return errors.New("SUPABASE_ANON_KEY is required")
	}
	if c.ProcessingAPIURL == "" {
		return errors.New("PROCESSING_API_URL is required")
	}
	return nil
}
