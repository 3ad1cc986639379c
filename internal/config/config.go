package config

import (
	"fmt"
	"os"

	"github.com/fernet/fernet-go"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Oracle   OracleConfig
	Sweep    SweepConfig
	CORS     CORSConfig
	Identity IdentityConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// OracleConfig holds the price oracle endpoint configuration
type OracleConfig struct {
	BaseURL string
}

// SweepConfig holds the auto-distribute sweep schedule
type SweepConfig struct {
	Enabled  bool
	Schedule string // cron spec, e.g. "@every 1m"
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// IdentityConfig holds the fernet key used to seal API keys
type IdentityConfig struct {
	Key *fernet.Key
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/revenue_split.db"),
		},
		Oracle: OracleConfig{
			BaseURL: getEnv("ORACLE_BASE_URL", "http://localhost:8545"),
		},
		Sweep: SweepConfig{
			Enabled:  getEnv("SWEEP_ENABLED", "true") == "true",
			Schedule: getEnv("SWEEP_SCHEDULE", "@every 1m"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	// The identity key seals API keys; without it no caller can be
	// authenticated, so it is generated when absent (dev convenience).
	rawKey := os.Getenv("IDENTITY_KEY")
	if rawKey == "" {
		var key fernet.Key
		if err := key.Generate(); err != nil {
			return nil, fmt.Errorf("failed to generate identity key: %w", err)
		}
		config.Identity.Key = &key
	} else {
		key, err := fernet.DecodeKey(rawKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode IDENTITY_KEY: %w", err)
		}
		config.Identity.Key = key
	}

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
