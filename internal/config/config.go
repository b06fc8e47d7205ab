package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends selectable via STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig
	OAuth    OAuthConfig
	Store    StoreConfig
	Redis    RedisConfig
	Database DatabaseConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins string
}

type OAuthConfig struct {
	Issuer   string
	Audience string

	// Static registrations, overridable for deployments that do not use
	// the demo defaults.
	ClientID       string
	ClientSecret   string
	RedirectURIs   []string
	ClientScope    string
	ResourceID     string
	ResourceSecret string
}

type StoreConfig struct {
	Backend string
	Reset   bool // clear persisted tokens on startup
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func Load() (*Config, error) {
	// .env is optional outside development
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "9001"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			AllowOrigins: getEnv("SERVER_ALLOW_ORIGINS", "*"),
		},
		OAuth: OAuthConfig{
			Issuer:         getEnv("OAUTH_ISSUER", "http://localhost:9001/"),
			Audience:       getEnv("OAUTH_AUDIENCE", "http://localhost:9002/"),
			ClientID:       getEnv("OAUTH_CLIENT_ID", "oauth-client-1"),
			ClientSecret:   getEnv("OAUTH_CLIENT_SECRET", "oauth-client-secret-1"),
			RedirectURIs:   getListEnv("OAUTH_REDIRECT_URIS", []string{"http://localhost:9000/callback"}),
			ClientScope:    getEnv("OAUTH_CLIENT_SCOPE", "foo bar"),
			ResourceID:     getEnv("OAUTH_RESOURCE_ID", "protected-resource-1"),
			ResourceSecret: getEnv("OAUTH_RESOURCE_SECRET", "protected-resource-secret-1"),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", BackendMemory),
			Reset:   getBoolEnv("STORE_RESET", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "authz"),
			Password: getEnv("DB_PASSWORD", "authz"),
			DBName:   getEnv("DB_NAME", "authzdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}

	switch cfg.Store.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	return cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
