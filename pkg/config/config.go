package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/leadflow/leadflow/pkg/observability"
)

// ServerConfig holds the HTTP server settings shared by all services.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	LogLevel        observability.LogLevel
}

// DatabaseConfig holds the SQL settings for services that own tables.
// Driver is "postgres" (lib/pq) or "sqlite3" for single-node deployments.
type DatabaseConfig struct {
	Driver      string
	URL         string
	MaxConns    int
	MaxIdle     int
	MaxLifetime time.Duration
}

// AuthConfig is the auth service configuration. The auth service owns no
// tables; it resolves credentials through the user directory service.
type AuthConfig struct {
	Server       ServerConfig
	JWTSecret    string
	TokenTTL     time.Duration
	DirectoryURL string
}

// UserConfig is the user directory service configuration.
type UserConfig struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWTSecret string
}

// LeadConfig is the lead service configuration.
type LeadConfig struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWTSecret string

	// RedisURL enables the stage list cache when non-empty.
	RedisURL      string
	StageCacheTTL time.Duration

	// Stale-lead notification sweeper.
	SweepInterval time.Duration
	StaleAfter    time.Duration
}

// LoadAuth loads the auth service configuration.
func LoadAuth() (*AuthConfig, error) {
	loadDotEnv()

	cfg := &AuthConfig{
		Server:       loadServerConfig("4001"),
		JWTSecret:    os.Getenv("LEADFLOW_JWT_SECRET"),
		TokenTTL:     getEnvDuration("LEADFLOW_TOKEN_TTL", time.Hour),
		DirectoryURL: getEnv("LEADFLOW_DIRECTORY_URL", "http://127.0.0.1:4002"),
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("LEADFLOW_JWT_SECRET is required")
	}
	return cfg, nil
}

// LoadUser loads the user directory service configuration.
func LoadUser() (*UserConfig, error) {
	loadDotEnv()

	cfg := &UserConfig{
		Server:    loadServerConfig("4002"),
		Database:  loadDatabaseConfig(),
		JWTSecret: os.Getenv("LEADFLOW_JWT_SECRET"),
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("LEADFLOW_JWT_SECRET is required")
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("LEADFLOW_DATABASE_URL is required")
	}
	return cfg, nil
}

// LoadLead loads the lead service configuration.
func LoadLead() (*LeadConfig, error) {
	loadDotEnv()

	cfg := &LeadConfig{
		Server:        loadServerConfig("4003"),
		Database:      loadDatabaseConfig(),
		JWTSecret:     os.Getenv("LEADFLOW_JWT_SECRET"),
		RedisURL:      getEnv("LEADFLOW_REDIS_URL", ""),
		StageCacheTTL: getEnvDuration("LEADFLOW_STAGE_CACHE_TTL", 5*time.Minute),
		SweepInterval: getEnvDuration("LEADFLOW_SWEEP_INTERVAL", 15*time.Minute),
		StaleAfter:    getEnvDuration("LEADFLOW_STALE_AFTER", 7*24*time.Hour),
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("LEADFLOW_JWT_SECRET is required")
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("LEADFLOW_DATABASE_URL is required")
	}
	return cfg, nil
}

func loadServerConfig(defaultPort string) ServerConfig {
	host := getEnv("LEADFLOW_HOST", "0.0.0.0")
	port := getEnv("PORT", defaultPort)

	return ServerConfig{
		Addr:            host + ":" + port,
		ReadTimeout:     getEnvDuration("LEADFLOW_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("LEADFLOW_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("LEADFLOW_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("LEADFLOW_SHUTDOWN_TIMEOUT", 30*time.Second),
		AllowedOrigins:  splitAndTrim(getEnv("LEADFLOW_ALLOWED_ORIGINS", "*")),
		LogLevel:        observability.ParseLogLevel(getEnv("LEADFLOW_LOG_LEVEL", "info")),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:      getEnv("LEADFLOW_DATABASE_DRIVER", "postgres"),
		URL:         getEnv("LEADFLOW_DATABASE_URL", ""),
		MaxConns:    getEnvInt("LEADFLOW_DATABASE_MAX_CONNS", 10),
		MaxIdle:     getEnvInt("LEADFLOW_DATABASE_MAX_IDLE", 5),
		MaxLifetime: getEnvDuration("LEADFLOW_DATABASE_MAX_LIFETIME", time.Hour),
	}
}

// loadDotEnv loads a .env file when one exists. Absence is not an error.
func loadDotEnv() {
	_ = godotenv.Load()
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
