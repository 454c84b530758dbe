package config

import (
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	t.Setenv("PROCESSING_API_URL", "http://processor:8000")
}

// unsetEnv removes a variable for the test; t.Setenv first so the
// original value is restored afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	for _, key := range []string{"PORT", "STORAGE_BUCKET", "LOG_LEVEL", "ALLOWED_ORIGINS", "REDIS_ADDR"} {
		unsetEnv(t, key)
	}

	cfg := Load()

	if cfg.Port != "4000" {
		t.Errorf("Port = %q, want 4000", cfg.Port)
	}
	if cfg.StorageBucket != "videos" {
		t.Errorf("StorageBucket = %q, want videos", cfg.StorageBucket)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.AllowedOrigins != "*" {
		t.Errorf("AllowedOrigins = %q, want *", cfg.AllowedOrigins)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, want empty (cache disabled)", cfg.RedisAddr)
	}
}

func TestLoad(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "5000")
	t.Setenv("STORAGE_BUCKET", "tracks")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.Port != "5000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.SupabaseURL != "https://example.supabase.co" {
		t.Errorf("SupabaseURL = %q", cfg.SupabaseURL)
	}
	if cfg.StorageBucket != "tracks" {
		t.Errorf("StorageBucket = %q", cfg.StorageBucket)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 3 {
		t.Errorf("redis = %q db %d", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	if got := getEnvInt("REDIS_DB", 7); got != 7 {
		t.Errorf("getEnvInt = %d, want fallback 7", got)
	}
}

func TestValidateRequiredSettings(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{"missing supabase url", func(c *Config) { c.SupabaseURL = "" }, "SUPABASE_URL"},
		{"missing supabase key", func(c *Config) { c.SupabaseKey = "" }, "SUPABASE_ANON_KEY"},
		{"missing processing url", func(c *Config) { c.ProcessingAPIURL = "" }, "PROCESSING_API_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				SupabaseURL:      "https://example.supabase.co",
				SupabaseKey:      "anon-key",
				ProcessingAPIURL: "http://processor:8000",
			}
			tt.mut(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestNewLoggerLevels(t *testing.T) {
	cfg := &Config{LogLevel: "warn"}
	if got := NewLogger(cfg).GetLevel(); got != logrus.WarnLevel {
		t.Errorf("level = %v, want warn", got)
	}

	// Unknown levels fall back to info rather than failing startup.
	cfg = &Config{LogLevel: "shouting"}
	if got := NewLogger(cfg).GetLevel(); got != logrus.InfoLevel {
		t.Errorf("level = %v, want info fallback", got)
	}
}
