// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	API         APIConfig
	Manage      ManageConfig
	CORS        CORSConfig
	Templates   TemplatesConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

// APIConfig points at the upstream ads REST API and the static image host.
type APIConfig struct {
	BaseURL        string
	UploadsBaseURL string
	Timeout        int   // in seconds
	MaxImageSize   int64 // in bytes
}

type ManageConfig struct {
	SessionTTL int // in minutes
}

type CORSConfig struct {
	AllowedOrigins []string
}

type TemplatesConfig struct {
	Glob string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "3000"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		API: APIConfig{
			BaseURL:        getEnv("API_BASE_URL", "http://localhost:5000"),
			UploadsBaseURL: getEnv("UPLOADS_BASE_URL", "http://localhost:5000"),
			Timeout:        getEnvAsInt("API_TIMEOUT", 15),
			MaxImageSize:   getEnvAsInt64("MAX_IMAGE_SIZE", 10<<20), // 10MB
		},
		Manage: ManageConfig{
			SessionTTL: getEnvAsInt("MANAGE_SESSION_TTL", 30),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Templates: TemplatesConfig{
			Glob: getEnv("TEMPLATES_GLOB", "./web/templates/*.html"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("API_BASE_URL must be an http(s) URL, got %q", c.API.BaseURL)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}

	if c.Manage.SessionTTL <= 0 {
		return fmt.Errorf("MANAGE_SESSION_TTL must be positive")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
