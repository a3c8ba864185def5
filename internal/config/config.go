package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	CORS       CORSConfig
	Cache      CacheConfig
	Geocoder   GeocoderConfig
	Metadata   MetadataConfig
	Extraction ExtractionConfig
	Intake     IntakeConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port  string
	Env   string
	Store string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host          string
	Port          string
	Name          string
	User          string
	Password      string
	PoolMin       int
	PoolMax       int
	AutoMigrate   bool
	MigrationsDir string
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// CacheConfig holds the optional Redis lookup cache configuration.
// An empty Addr disables the cache.
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// GeocoderConfig holds the address lookup service configuration.
type GeocoderConfig struct {
	URL      string
	Timeout  time.Duration
	Debounce time.Duration
}

// MetadataConfig holds the link preview service configuration.
type MetadataConfig struct {
	PreviewURL      string
	MshotsHost      string
	ScreenshotWidth int
	Timeout         time.Duration
}

// ExtractionConfig holds the AI listing parser configuration.
// An empty APIKey disables extraction; intake then always runs in manual mode.
type ExtractionConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// IntakeConfig holds intake session configuration.
type IntakeConfig struct {
	SessionTTL time.Duration
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present;
// real environment variables take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORE", StorePostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "acquire")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "24h")
	v.SetDefault("GEOCODER_URL", "https://photon.komoot.io/api/")
	v.SetDefault("GEOCODER_TIMEOUT", "5s")
	v.SetDefault("ADDRESS_DEBOUNCE", "1s")
	v.SetDefault("PREVIEW_API_URL", "https://api.microlink.io/")
	v.SetDefault("MSHOTS_HOST", "s0.wp.com")
	v.SetDefault("SCREENSHOT_WIDTH", 1200)
	v.SetDefault("PREVIEW_TIMEOUT", "10s")
	v.SetDefault("AI_MODEL", "gemini-2.0-flash")
	v.SetDefault("AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("AI_TIMEOUT", "30s")
	v.SetDefault("INTAKE_SESSION_TTL", "2h")

	// Bind environment variables
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:  v.GetString("PORT"),
			Env:   v.GetString("ENV"),
			Store: strings.ToLower(v.GetString("STORE")),
		},
		Database: DatabaseConfig{
			Host:          v.GetString("DB_HOST"),
			Port:          v.GetString("DB_PORT"),
			Name:          v.GetString("DB_NAME"),
			User:          v.GetString("DB_USER"),
			Password:      v.GetString("DB_PASSWORD"),
			PoolMin:       v.GetInt("DB_POOL_MIN"),
			PoolMax:       v.GetInt("DB_POOL_MAX"),
			AutoMigrate:   v.GetBool("DB_AUTO_MIGRATE"),
			MigrationsDir: v.GetString("DB_MIGRATIONS_DIR"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Cache: CacheConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("CACHE_TTL"),
		},
		Geocoder: GeocoderConfig{
			URL:      v.GetString("GEOCODER_URL"),
			Timeout:  v.GetDuration("GEOCODER_TIMEOUT"),
			Debounce: v.GetDuration("ADDRESS_DEBOUNCE"),
		},
		Metadata: MetadataConfig{
			PreviewURL:      v.GetString("PREVIEW_API_URL"),
			MshotsHost:      v.GetString("MSHOTS_HOST"),
			ScreenshotWidth: v.GetInt("SCREENSHOT_WIDTH"),
			Timeout:         v.GetDuration("PREVIEW_TIMEOUT"),
		},
		Extraction: ExtractionConfig{
			APIKey:  v.GetString("AI_API_KEY"),
			BaseURL: v.GetString("AI_BASE_URL"),
			Model:   v.GetString("AI_MODEL"),
			Timeout: v.GetDuration("AI_TIMEOUT"),
		},
		Intake: IntakeConfig{
			SessionTTL: v.GetDuration("INTAKE_SESSION_TTL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.Store != StorePostgres && c.Server.Store != StoreMemory {
		return fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Server.Store)
	}

	if c.Server.Store == StorePostgres {
		if err := c.Database.Validate(); err != nil {
			return err
		}
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	if c.Geocoder.URL == "" {
		return fmt.Errorf("GEOCODER_URL is required")
	}
	if c.Geocoder.Debounce <= 0 {
		return fmt.Errorf("ADDRESS_DEBOUNCE must be positive")
	}
	if c.Metadata.MshotsHost == "" {
		return fmt.Errorf("MSHOTS_HOST is required")
	}
	if c.Metadata.ScreenshotWidth < 1 {
		return fmt.Errorf("SCREENSHOT_WIDTH must be at least 1")
	}
	if c.Extraction.APIKey != "" && c.Extraction.Model == "" {
		return fmt.Errorf("AI_MODEL is required when AI_API_KEY is set")
	}
	if c.Intake.SessionTTL <= 0 {
		return fmt.Errorf("INTAKE_SESSION_TTL must be positive")
	}

	return nil
}

// Validate checks the PostgreSQL settings.
func (d DatabaseConfig) Validate() error {
	if d.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if d.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if d.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if d.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if d.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if d.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if d.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if d.PoolMin > d.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	return nil
}

// DSN builds the PostgreSQL connection URL.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
	)
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
